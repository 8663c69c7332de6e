package insts_test

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/pipesim/insts"
)

var _ = Describe("Decoder", func() {
	var decoder *insts.Decoder

	BeforeEach(func() {
		decoder = insts.NewDecoder()
	})

	decode := func(text string) insts.Instruction {
		inst, err := decoder.Decode(text)
		Expect(err).NotTo(HaveOccurred())
		return inst
	}

	Describe("arithmetic instructions", func() {
		It("should decode add", func() {
			inst := decode("add $1, $2, $3")

			arith, ok := inst.(*insts.Arith)
			Expect(ok).To(BeTrue())
			Expect(arith.Op()).To(Equal(insts.OpADD))
			Expect(arith.Rd).To(Equal(uint8(1)))
			Expect(arith.Rs).To(Equal(uint8(2)))
			Expect(arith.Rt).To(Equal(uint8(3)))
			Expect(arith.Sources()).To(Equal([]uint8{2, 3}))

			dest, writes := arith.Dest()
			Expect(writes).To(BeTrue())
			Expect(dest).To(Equal(uint8(1)))
		})

		It("should decode sub", func() {
			inst := decode("sub $31, $0, $17")

			arith := inst.(*insts.Arith)
			Expect(arith.Op()).To(Equal(insts.OpSUB))
			Expect(arith.Rd).To(Equal(uint8(31)))
			Expect(arith.Rs).To(Equal(uint8(0)))
			Expect(arith.Rt).To(Equal(uint8(17)))
		})

		It("should tolerate irregular whitespace", func() {
			inst := decode("  add\t$1 ,$2,   $3  ")
			Expect(inst.String()).To(Equal("add $1, $2, $3"))
		})
	})

	Describe("beq", func() {
		It("should decode a positive offset", func() {
			br := decode("beq $1, $2, 3").(*insts.Branch)
			Expect(br.Rs).To(Equal(uint8(1)))
			Expect(br.Rt).To(Equal(uint8(2)))
			Expect(br.Offset).To(Equal(int64(3)))
			Expect(br.Sources()).To(Equal([]uint8{1, 2}))

			_, writes := br.Dest()
			Expect(writes).To(BeFalse())
		})

		It("should decode a negative offset", func() {
			br := decode("beq $0, $0, -2").(*insts.Branch)
			Expect(br.Offset).To(Equal(int64(-2)))
		})
	})

	Describe("memory instructions", func() {
		It("should decode lw", func() {
			ld := decode("lw $2, 4($3)").(*insts.Load)
			Expect(ld.Op()).To(Equal(insts.OpLW))
			Expect(ld.Rt).To(Equal(uint8(2)))
			Expect(ld.Base).To(Equal(uint8(3)))
			Expect(ld.Offset).To(Equal(int64(4)))
			Expect(ld.Sources()).To(Equal([]uint8{3}))

			dest, writes := ld.Dest()
			Expect(writes).To(BeTrue())
			Expect(dest).To(Equal(uint8(2)))
		})

		It("should decode sw with a negative offset", func() {
			st := decode("sw $5, -1($6)").(*insts.Store)
			Expect(st.Op()).To(Equal(insts.OpSW))
			Expect(st.Rt).To(Equal(uint8(5)))
			Expect(st.Base).To(Equal(uint8(6)))
			Expect(st.Offset).To(Equal(int64(-1)))
		})

		It("should list the base register before the stored register", func() {
			st := decode("sw $5, 0($6)")
			Expect(st.Sources()).To(Equal([]uint8{6, 5}))

			_, writes := st.Dest()
			Expect(writes).To(BeFalse())
		})

		It("should round-trip through String", func() {
			Expect(decode("lw $2, 0($0)").String()).To(Equal("lw $2, 0($0)"))
			Expect(decode("sw $2, 8($1)").String()).To(Equal("sw $2, 8($1)"))
		})
	})

	Describe("control signals", func() {
		DescribeTable("should match the control table",
			func(text string, want insts.ControlSignals) {
				Expect(decode(text).Control()).To(Equal(want))
			},
			Entry("add", "add $1, $2, $3", insts.ControlSignals{
				RegDst: insts.Bit1, ALUSrc: insts.Bit0, MemtoReg: insts.Bit0, RegWrite: insts.Bit1,
				MemRead: insts.Bit0, MemWrite: insts.Bit0, Branch: insts.Bit0, ALUOp: insts.ALUOpAdd,
			}),
			Entry("sub", "sub $1, $2, $3", insts.ControlSignals{
				RegDst: insts.Bit1, ALUSrc: insts.Bit0, MemtoReg: insts.Bit0, RegWrite: insts.Bit1,
				MemRead: insts.Bit0, MemWrite: insts.Bit0, Branch: insts.Bit0, ALUOp: insts.ALUOpSub,
			}),
			Entry("lw", "lw $1, 0($2)", insts.ControlSignals{
				RegDst: insts.Bit0, ALUSrc: insts.Bit1, MemtoReg: insts.Bit1, RegWrite: insts.Bit1,
				MemRead: insts.Bit1, MemWrite: insts.Bit0, Branch: insts.Bit0, ALUOp: insts.ALUOpMem,
			}),
			Entry("sw", "sw $1, 0($2)", insts.ControlSignals{
				RegDst: insts.BitX, ALUSrc: insts.Bit1, MemtoReg: insts.BitX, RegWrite: insts.Bit0,
				MemRead: insts.Bit0, MemWrite: insts.Bit1, Branch: insts.Bit0, ALUOp: insts.ALUOpMem,
			}),
			Entry("beq", "beq $1, $2, 1", insts.ControlSignals{
				RegDst: insts.BitX, ALUSrc: insts.Bit0, MemtoReg: insts.BitX, RegWrite: insts.Bit0,
				MemRead: insts.Bit0, MemWrite: insts.Bit0, Branch: insts.Bit1, ALUOp: insts.ALUOpBranch,
			}),
		)

		It("should print ALUOp as two bits", func() {
			Expect(insts.ALUOpMem.String()).To(Equal("00"))
			Expect(insts.ALUOpBranch.String()).To(Equal("01"))
			Expect(insts.ALUOpAdd.String()).To(Equal("10"))
			Expect(insts.ALUOpSub.String()).To(Equal("11"))
		})

		It("should print tri-state bits", func() {
			Expect(insts.Bit0.String()).To(Equal("0"))
			Expect(insts.Bit1.String()).To(Equal("1"))
			Expect(insts.BitX.String()).To(Equal("X"))
		})

		It("should panic when a don't-care signal drives a decision", func() {
			c := decode("sw $1, 0($2)").Control()
			Expect(func() { c.MemtoReg.Asserted() }).To(Panic())
			Expect(c.MemWrite.Asserted()).To(BeTrue())
			Expect(c.RegWrite.Asserted()).To(BeFalse())
		})

		It("should panic for an opcode with no control entry", func() {
			Expect(func() { insts.ControlFor(insts.OpUnknown) }).To(Panic())
		})
	})

	Describe("determinism", func() {
		It("should decode identical text to identical instructions", func() {
			for _, text := range []string{
				"add $1, $2, $3", "sub $4, $5, $6", "beq $1, $1, -3",
				"lw $7, 2($8)", "sw $9, 3($10)",
			} {
				a := decode(text)
				b := decode(text)
				Expect(a).To(Equal(b))
				Expect(a).NotTo(BeIdenticalTo(b))
				Expect(a.Control()).To(Equal(b.Control()))
			}
		})
	})

	Describe("errors", func() {
		DescribeTable("should reject malformed text with a FormatError",
			func(text string, reason error) {
				inst, err := decoder.Decode(text)
				Expect(inst).To(BeNil())

				var formatErr *insts.FormatError
				Expect(errors.As(err, &formatErr)).To(BeTrue())
				Expect(formatErr.Reason).To(MatchError(reason))
				Expect(err).To(MatchError(reason))
			},
			Entry("empty", "   ", insts.ErrEmptyInstruction),
			Entry("unsupported opcode", "mul $1, $2, $3", insts.ErrUnsupportedOpcode),
			Entry("upper-case mnemonic", "ADD $1, $2, $3", insts.ErrUnsupportedOpcode),
			Entry("too few operands", "add $1, $2", insts.ErrOperandCount),
			Entry("too many operands", "lw $1, 0($2), $3", insts.ErrOperandCount),
			Entry("missing dollar", "add 1, $2, $3", insts.ErrRegisterSyntax),
			Entry("named register", "add $t0, $2, $3", insts.ErrRegisterSyntax),
			Entry("register 32", "add $32, $2, $3", insts.ErrRegisterRange),
			Entry("huge register", "sub $1, $999999999999999999999, $3", insts.ErrRegisterRange),
			Entry("non-numeric offset", "beq $1, $2, loop", insts.ErrOffsetSyntax),
			Entry("missing offset", "lw $1, ($2)", insts.ErrOffsetSyntax),
			Entry("missing parenthesis", "lw $1, 4$2", insts.ErrMemOperandSyntax),
			Entry("unclosed parenthesis", "sw $1, 4($2", insts.ErrMemOperandSyntax),
			Entry("bad base", "sw $1, 4(2)", insts.ErrRegisterSyntax),
		)

		It("should report the offending text", func() {
			_, err := decoder.Decode("mul $1, $2, $3")

			var formatErr *insts.FormatError
			Expect(errors.As(err, &formatErr)).To(BeTrue())
			Expect(formatErr.Text).To(Equal("mul $1, $2, $3"))
			Expect(err.Error()).To(ContainSubstring("mul $1, $2, $3"))
		})
	})

	Describe("Op", func() {
		It("should print mnemonics", func() {
			Expect(insts.OpADD.String()).To(Equal("add"))
			Expect(insts.OpSUB.String()).To(Equal("sub"))
			Expect(insts.OpBEQ.String()).To(Equal("beq"))
			Expect(insts.OpLW.String()).To(Equal("lw"))
			Expect(insts.OpSW.String()).To(Equal("sw"))
			Expect(insts.OpUnknown.String()).To(Equal("unknown"))
		})
	})
})
