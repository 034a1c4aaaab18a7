package core

import (
	"errors"
	"math"

	gomock "github.com/golang/mock/gomock"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("InstEmulator", func() {
	var (
		mockCtrl *gomock.Controller
		sink     *MockOutputSink
		ie       instEmulator
		s        *State
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		sink = NewMockOutputSink(mockCtrl)
		ie = instEmulator{out: sink}
		s = NewState()
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	run := func(opcode string, params ...int32) (int, bool, error) {
		return ie.RunInst(NewInstruction(0, opcode, params...), s)
	}

	Context("Stack Instructions", func() {
		It("should push the embedded constant", func() {
			_, jump, err := run("iconst_4")
			Expect(err).NotTo(HaveOccurred())
			Expect(jump).To(BeFalse())
			Expect(s.Stack()).To(Equal([]int32{4}))
		})

		It("should push zero for a bare iconst", func() {
			_, _, err := run("iconst")
			Expect(err).NotTo(HaveOccurred())
			Expect(s.Stack()).To(Equal([]int32{0}))
		})

		It("should skip iconst with an invalid suffix", func() {
			_, _, err := run("iconst_7")
			Expect(err).NotTo(HaveOccurred())
			Expect(s.StackDepth()).To(Equal(0))
		})

		It("should push the bipush parameter", func() {
			_, _, err := run("bipush", -12)
			Expect(err).NotTo(HaveOccurred())
			Expect(s.Stack()).To(Equal([]int32{-12}))
		})

		It("should fail bipush without a parameter", func() {
			_, _, err := run("bipush")
			Expect(err).To(MatchError(ErrParamArity))
		})

		It("should print the popped value", func() {
			s.push(42)
			sink.EXPECT().Emit(int32(42)).Return(nil)

			_, _, err := run("print")
			Expect(err).NotTo(HaveOccurred())
			Expect(s.StackDepth()).To(Equal(0))
		})

		It("should surface sink failures", func() {
			s.push(1)
			sink.EXPECT().Emit(int32(1)).Return(errors.New("closed"))

			_, _, err := run("print")
			Expect(err).To(MatchError(ContainSubstring("closed")))
		})

		It("should treat return as a no-op", func() {
			s.push(3)
			_, jump, err := run("return")
			Expect(err).NotTo(HaveOccurred())
			Expect(jump).To(BeFalse())
			Expect(s.Stack()).To(Equal([]int32{3}))
		})
	})

	Context("Arithmetic Instructions", func() {
		DescribeTable("second popped value is the left operand",
			func(opcode string, b, a, want int32) {
				s.push(b)
				s.push(a)
				_, _, err := run(opcode)
				Expect(err).NotTo(HaveOccurred())
				Expect(s.Stack()).To(Equal([]int32{want}))
			},
			Entry("iadd", "iadd", int32(7), int32(3), int32(10)),
			Entry("iadd commutes", "iadd", int32(3), int32(7), int32(10)),
			Entry("imul", "imul", int32(6), int32(-4), int32(-24)),
			Entry("imul commutes", "imul", int32(-4), int32(6), int32(-24)),
			Entry("isub", "isub", int32(7), int32(3), int32(4)),
			Entry("isub reversed", "isub", int32(3), int32(7), int32(-4)),
			Entry("idiv", "idiv", int32(17), int32(5), int32(3)),
			Entry("idiv truncates", "idiv", int32(-17), int32(5), int32(-3)),
			Entry("irem", "irem", int32(17), int32(5), int32(2)),
			Entry("irem sign", "irem", int32(-17), int32(5), int32(-2)),
			Entry("iadd wraps", "iadd", int32(math.MaxInt32), int32(1), int32(math.MinInt32)),
		)

		It("should fail on division by zero", func() {
			s.push(5)
			s.push(0)
			_, _, err := run("idiv")
			Expect(err).To(MatchError(ErrDivideByZero))
		})

		It("should fail on remainder by zero", func() {
			s.push(5)
			s.push(0)
			_, _, err := run("irem")
			Expect(err).To(MatchError(ErrDivideByZero))
		})

		It("should fail on stack underflow", func() {
			s.push(1)
			_, _, err := run("iadd")
			Expect(err).To(MatchError(ErrStackUnderflow))
		})
	})

	Context("Variable Instructions", func() {
		It("should store and load with embedded index", func() {
			s.push(9)
			_, _, err := run("istore_2")
			Expect(err).NotTo(HaveOccurred())
			Expect(s.Variables()).To(Equal(map[int32]int32{2: 9}))

			_, _, err = run("iload_2")
			Expect(err).NotTo(HaveOccurred())
			Expect(s.Stack()).To(Equal([]int32{9}))
		})

		It("should store and load with a parameter index", func() {
			s.push(11)
			_, _, err := run("istore", 7)
			Expect(err).NotTo(HaveOccurred())

			_, _, err = run("iload", 7)
			Expect(err).NotTo(HaveOccurred())
			Expect(s.Stack()).To(Equal([]int32{11}))
		})

		It("should fail to load an unset variable", func() {
			_, _, err := run("iload_1")
			Expect(err).To(MatchError(ErrUndefinedVariable))
		})

		It("should fail without a variable index", func() {
			s.push(1)
			_, _, err := run("istore")
			Expect(err).To(MatchError(ErrNoVariableIndex))
		})

		It("should increment by the second parameter", func() {
			s.store(4, 10)
			_, jump, err := run("iinc", 4, 3)
			Expect(err).NotTo(HaveOccurred())
			Expect(jump).To(BeFalse())

			v, ok := s.Variable(4)
			Expect(ok).To(BeTrue())
			Expect(v).To(Equal(int32(13)))
		})

		It("should fail iinc without an increment", func() {
			s.store(4, 10)
			_, _, err := run("iinc", 4)
			Expect(err).To(MatchError(ErrParamArity))
		})
	})

	Context("Control Instructions", func() {
		It("should jump unconditionally", func() {
			target, jump, err := run("goto", 12)
			Expect(err).NotTo(HaveOccurred())
			Expect(jump).To(BeTrue())
			Expect(target).To(Equal(12))
		})

		// y is pushed first, x second; x is popped first.
		DescribeTable("comparison branches",
			func(opcode string, y, x int32, taken bool) {
				s.push(y)
				s.push(x)
				target, jump, err := run(opcode, 30)
				Expect(err).NotTo(HaveOccurred())
				Expect(jump).To(Equal(taken))
				if taken {
					Expect(target).To(Equal(30))
				}
				Expect(s.StackDepth()).To(Equal(0))
			},
			Entry("eq taken", "if_icmpeq", int32(2), int32(2), true),
			Entry("eq not taken", "if_icmpeq", int32(2), int32(3), false),
			Entry("ne taken", "if_icmpne", int32(2), int32(3), true),
			Entry("ne not taken", "if_icmpne", int32(3), int32(3), false),
			Entry("ge when y >= x", "if_icmpge", int32(5), int32(3), true),
			Entry("ge equal", "if_icmpge", int32(3), int32(3), true),
			Entry("ge not taken", "if_icmpge", int32(1), int32(3), false),
			Entry("gt when y > x", "if_icmpgt", int32(5), int32(3), true),
			Entry("gt equal", "if_icmpgt", int32(3), int32(3), false),
			Entry("le when y <= x", "if_icmple", int32(1), int32(3), true),
			Entry("le not taken", "if_icmple", int32(4), int32(3), false),
			Entry("lt when y < x", "if_icmplt", int32(1), int32(5), true),
			Entry("lt equal", "if_icmplt", int32(5), int32(5), false),
		)

		It("should not read the target of a branch that is not taken", func() {
			s.push(1)
			s.push(2)
			_, jump, err := run("if_icmpeq")
			Expect(err).NotTo(HaveOccurred())
			Expect(jump).To(BeFalse())
		})

		It("should branch on nonzero", func() {
			s.push(-1)
			target, jump, err := run("ifne", 8)
			Expect(err).NotTo(HaveOccurred())
			Expect(jump).To(BeTrue())
			Expect(target).To(Equal(8))

			s.push(0)
			_, jump, err = run("ifne", 8)
			Expect(err).NotTo(HaveOccurred())
			Expect(jump).To(BeFalse())
		})

		It("should skip unknown opcodes", func() {
			_, jump, err := run("nop", 1, 2)
			Expect(err).NotTo(HaveOccurred())
			Expect(jump).To(BeFalse())
		})
	})
})
