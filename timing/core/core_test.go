package core_test

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/pipesim/emu"
	"github.com/sarchlab/pipesim/timing/core"
	"github.com/sarchlab/pipesim/timing/pipeline"
)

// recordingHook remembers every hook position it sees.
type recordingHook struct {
	positions []*sim.HookPos
	items     []interface{}
}

func (h *recordingHook) Func(ctx sim.HookCtx) {
	h.positions = append(h.positions, ctx.Pos)
	h.items = append(h.items, ctx.Item)
}

var _ = Describe("Core", func() {
	var (
		engine  sim.Engine
		regFile *emu.RegFile
		memory  *emu.Memory
	)

	BeforeEach(func() {
		engine = sim.NewSerialEngine()
		regFile = emu.NewRegFile(1)
		memory = emu.NewMemory(emu.DefaultMemoryWords, 1)
	})

	newCore := func(program ...string) *core.Core {
		return core.NewCore("Core", engine, 1*sim.GHz, program, regFile, memory)
	}

	It("should create a core", func() {
		c := newCore("add $1, $2, $3")
		Expect(c).NotTo(BeNil())
		Expect(c.Name()).To(Equal("Core"))
		Expect(c.Pipeline).NotTo(BeNil())
		Expect(c.RegFile()).To(BeIdenticalTo(regFile))
		Expect(c.Memory()).To(BeIdenticalTo(memory))
		Expect(c.Drained()).To(BeFalse())
	})

	It("should run a program to completion on the engine", func() {
		c := newCore("lw $2, 0($0)", "add $3, $2, $2")

		Expect(c.Run()).To(Succeed())
		Expect(c.Drained()).To(BeTrue())
		Expect(c.Err()).NotTo(HaveOccurred())
		Expect(regFile.ReadReg(3)).To(Equal(int64(2)))

		stats := c.Stats()
		Expect(stats.Cycles).To(Equal(uint64(7)))
		Expect(stats.Instructions).To(Equal(uint64(2)))
		Expect(stats.Stalls).To(Equal(uint64(1)))
		Expect(stats.Flushes).To(BeZero())
	})

	It("should match a directly driven pipeline", func() {
		program := []string{
			"add $2, $1, $1",
			"sub $2, $2, $1",
			"beq $2, $0, 2",
			"beq $0, $0, -2",
			"add $3, $1, $1",
		}

		c := newCore(program...)
		Expect(c.Run()).To(Succeed())

		direct := pipeline.NewPipeline(program,
			emu.NewRegFile(1), emu.NewMemory(emu.DefaultMemoryWords, 1))
		Expect(direct.Run()).To(Succeed())

		Expect(c.Pipeline.Stats()).To(Equal(direct.Stats()))
		Expect(c.RegFile().Values()).To(Equal(direct.RegFile().Values()))
	})

	It("should publish a snapshot per cycle and a drained event", func() {
		hook := &recordingHook{}
		c := newCore("add $1, $0, $0")
		c.AcceptHook(hook)

		Expect(c.Run()).To(Succeed())

		Expect(hook.positions).To(HaveLen(6))
		for i := 0; i < 5; i++ {
			Expect(hook.positions[i]).To(BeIdenticalTo(core.HookPosCycle))
			snap, ok := hook.items[i].(pipeline.Snapshot)
			Expect(ok).To(BeTrue())
			Expect(snap.Cycle).To(Equal(uint64(i + 1)))
		}

		Expect(hook.positions[5]).To(BeIdenticalTo(core.HookPosDrained))
		stats, ok := hook.items[5].(pipeline.Statistics)
		Expect(ok).To(BeTrue())
		Expect(stats.Cycles).To(Equal(uint64(5)))
	})

	It("should adapt a function into a snapshot hook", func() {
		var cycles []uint64
		c := newCore("add $1, $0, $0", "add $2, $0, $0")
		c.AcceptHook(core.SnapshotHook(func(s pipeline.Snapshot) {
			cycles = append(cycles, s.Cycle)
		}))

		Expect(c.Run()).To(Succeed())
		Expect(cycles).To(Equal([]uint64{1, 2, 3, 4, 5, 6}))
	})

	It("should stop the engine on an error", func() {
		c := newCore("lw $1, 99($0)", "add $2, $0, $0")

		err := c.Run()
		var addrErr *emu.AddressError
		Expect(errors.As(err, &addrErr)).To(BeTrue())
		Expect(c.Err()).To(BeIdenticalTo(err))
		Expect(c.Drained()).To(BeFalse())
	})

	It("should honor pipeline options", func() {
		c := core.NewCore("Core", engine, 1*sim.GHz,
			[]string{"beq $0, $0, 0"}, regFile, memory,
			pipeline.WithMaxCycles(10))

		Expect(c.Run()).To(MatchError(pipeline.ErrCycleLimit))
		Expect(c.Stats().Cycles).To(Equal(uint64(10)))
	})
})
