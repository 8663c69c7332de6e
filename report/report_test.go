package report_test

import (
	"bytes"
	"errors"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/pipesim/emu"
	"github.com/sarchlab/pipesim/report"
	"github.com/sarchlab/pipesim/timing/pipeline"
)

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("disk full")
}

var _ = Describe("Writer", func() {
	var (
		buf     *bytes.Buffer
		w       *report.Writer
		regFile *emu.RegFile
		memory  *emu.Memory
		pipe    *pipeline.Pipeline
	)

	BeforeEach(func() {
		buf = &bytes.Buffer{}
		w = report.NewWriter(buf)
		regFile = emu.NewRegFile(1)
		memory = emu.NewMemory(4, 1)
	})

	runCycles := func(n int, program ...string) pipeline.Snapshot {
		pipe = pipeline.NewPipeline(program, regFile, memory)
		for i := 0; i < n; i++ {
			done, err := pipe.Tick()
			Expect(err).NotTo(HaveOccurred())
			Expect(done).To(BeFalse())
		}
		return pipe.Snapshot()
	}

	Describe("Cycle", func() {
		It("should print empty latches with don't-care signals", func() {
			w.Cycle(pipeline.Snapshot{Cycle: 1})

			Expect(buf.String()).To(Equal(
				"Cycle 1 Pipeline State:\n" +
					"  IF/ID: None\n" +
					"  ID/EX: None | Signals: RegDst=X, ALUSrc=X, MemRead=X, MemWrite=X, MemtoReg=X, RegWrite=X, Branch=X, ALUOp=X\n" +
					"  EX/MEM: None | Signals: Branch=X, MemRead=X, MemWrite=X, RegWrite=X, MemtoReg=X\n" +
					"  MEM/WB: None | Signals: RegWrite=X, MemtoReg=X\n" +
					"\n"))
		})

		It("should print a full pipeline", func() {
			snap := runCycles(4,
				"lw $2, 0($0)",
				"sub $4, $1, $1",
				"add $5, $1, $1",
				"sw $1, 1($0)",
			)
			w.Cycle(snap)

			Expect(buf.String()).To(Equal(
				"Cycle 4 Pipeline State:\n" +
					"  IF/ID: sw $1, 1($0)\n" +
					"  ID/EX: (op=add) | Signals: RegDst=1, ALUSrc=0, MemRead=0, MemWrite=0, MemtoReg=0, RegWrite=1, Branch=0, ALUOp=10\n" +
					"  EX/MEM: (op=sub) | Signals: Branch=0, MemRead=0, MemWrite=0, RegWrite=1, MemtoReg=0\n" +
					"  MEM/WB: (op=lw) | Signals: RegWrite=1, MemtoReg=1\n" +
					"\n"))
		})

		It("should print don't-care signals of a store", func() {
			snap := runCycles(2, "sw $1, 1($0)")
			w.Cycle(snap)

			Expect(buf.String()).To(ContainSubstring(
				"ID/EX: (op=sw) | Signals: RegDst=X, ALUSrc=1, MemRead=0, MemWrite=1, MemtoReg=X, RegWrite=0, Branch=0, ALUOp=00"))
		})

		It("should note stalls", func() {
			snap := runCycles(3, "lw $2, 0($0)", "add $3, $2, $2")
			w.Cycle(snap)

			Expect(buf.String()).To(ContainSubstring("Pipeline Stalled: Data Hazard Detected (load-use)"))
			Expect(buf.String()).To(ContainSubstring("  IF/ID: add $3, $2, $2\n"))
			Expect(buf.String()).To(ContainSubstring("  ID/EX: None |"))
		})

		It("should note flushes", func() {
			snap := runCycles(3, "beq $1, $1, 2", "add $5, $0, $0", "add $6, $1, $1")
			w.Cycle(snap)

			Expect(buf.String()).To(ContainSubstring("Pipeline Flushed: Control Hazard Detected"))
			Expect(buf.String()).To(ContainSubstring("  EX/MEM: (op=beq) | Signals: Branch=1,"))
		})
	})

	Describe("Final", func() {
		It("should print registers, memory and the cycle count", func() {
			regFile.WriteReg(3, -2)
			Expect(memory.Write(1, 9)).To(Succeed())

			w.Final(regFile, memory, 7)
			out := buf.String()

			Expect(out).To(HavePrefix("Final Register Values:\n$0=0 $1=1 $2=1 $3=-2 $4=1 "))
			Expect(out).To(ContainSubstring(" $31=1\n\n"))
			Expect(out).To(ContainSubstring("Final Memory Values:\nM[0]=1 M[1]=9 M[2]=1 M[3]=1\n\n"))
			Expect(out).To(HaveSuffix("Total Cycles: 7\n"))
			Expect(strings.Count(out, "$")).To(Equal(32))
		})

		It("should print large values without grouping", func() {
			regFile.WriteReg(1, 1234567)
			w.Final(regFile, memory, 100000)

			Expect(buf.String()).To(ContainSubstring("$1=1234567 "))
			Expect(buf.String()).To(ContainSubstring("Total Cycles: 100000\n"))
		})
	})

	Describe("Stats", func() {
		It("should summarize a run", func() {
			pipe = pipeline.NewPipeline([]string{"lw $2, 0($0)", "add $3, $2, $2"},
				regFile, memory)
			Expect(pipe.Run()).To(Succeed())

			w.Stats(pipe.Stats())
			out := buf.String()
			Expect(out).To(ContainSubstring("Total Instructions: 2\n"))
			Expect(out).To(ContainSubstring("Total Cycles: 7\n"))
			Expect(out).To(ContainSubstring("CPI: 3.50\n"))
			Expect(out).To(ContainSubstring("Stalls:       1 (load-use 1, branch 0)"))
		})
	})

	It("should keep the first write error", func() {
		w = report.NewWriter(failingWriter{})
		w.Cycle(pipeline.Snapshot{Cycle: 1})
		w.Final(regFile, memory, 1)
		Expect(w.Err()).To(MatchError("disk full"))
	})
})
