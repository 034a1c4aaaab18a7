package core

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Program", func() {
	It("should keep source order and index offsets", func() {
		prog := mustLoad(loopProgram)
		Expect(prog.Len()).To(Equal(9))
		Expect(prog.Insts[2].Opcode).To(Equal("iinc"))
		Expect(prog.Offsets()).To(Equal([]int{0, 1, 2, 5, 6, 8, 11, 12, 13}))

		pos, ok := prog.Lookup(8)
		Expect(ok).To(BeTrue())
		Expect(pos).To(Equal(5))

		_, ok = prog.Lookup(3)
		Expect(ok).To(BeFalse())
	})

	It("should report duplicate offsets", func() {
		prog := NewProgram([]Instruction{
			NewInstruction(0, "iconst_1"),
			NewInstruction(1, "iconst_2"),
			NewInstruction(0, "iadd"),
			NewInstruction(0, "print"),
		})
		Expect(prog.DuplicateOffsets()).To(Equal([]int{0}))

		pos, _ := prog.Lookup(0)
		Expect(pos).To(Equal(3))
	})

	It("should skip blank lines", func() {
		prog := mustLoad("\n0: iconst_1\n\n   \n1: print\n")
		Expect(prog.Len()).To(Equal(2))
	})

	It("should stop at the first malformed line", func() {
		_, err := LoadProgram(strings.NewReader("0: iconst_1\n1: iinc 1, 2, 3\n"))
		var parseErr *ParseError
		Expect(errors.As(err, &parseErr)).To(BeTrue())
	})

	It("should render the program", func() {
		prog := mustLoad("0: iconst_1\n1: bipush 6\n")
		Expect(prog.String()).To(Equal("0: iconst_1  1: bipush 6 "))
	})

	Context("files", func() {
		var dir string

		BeforeEach(func() {
			dir = GinkgoT().TempDir()
		})

		It("should load a text program file", func() {
			path := filepath.Join(dir, "add.txt")
			Expect(os.WriteFile(path, []byte(addProgram), 0o644)).To(Succeed())

			prog, err := LoadProgramFile(path)
			Expect(err).NotTo(HaveOccurred())
			Expect(prog.Len()).To(Equal(5))
		})

		It("should report a missing file as an I/O error", func() {
			_, err := LoadProgramFile(filepath.Join(dir, "missing.txt"))
			Expect(err).To(HaveOccurred())

			var parseErr *ParseError
			Expect(errors.As(err, &parseErr)).To(BeFalse())
		})

		It("should refuse a directory", func() {
			_, err := LoadProgramFile(dir)
			Expect(err).To(MatchError(ContainSubstring("not a regular file")))
		})

		It("should load a YAML program", func() {
			path := filepath.Join(dir, "add.yaml")
			src := `instructions:
  - {offset: 0, opcode: iconst_1}
  - {offset: 1, opcode: bipush, params: [6]}
  - {offset: 3, opcode: iadd}
  - {offset: 4, opcode: print}
`
			Expect(os.WriteFile(path, []byte(src), 0o644)).To(Succeed())

			prog, err := LoadProgramFileFromYAML(path)
			Expect(err).NotTo(HaveOccurred())
			Expect(prog.Len()).To(Equal(4))
			Expect(prog.Insts[1].Params).To(Equal([]int32{6}))
			Expect(prog.Insts[0].Op()).To(Equal(OpIconst))
		})

		It("should reject unknown YAML fields", func() {
			_, err := LoadProgramFromYAML(strings.NewReader(
				"instructions:\n  - {offset: 0, opcode: iadd, extra: 1}\n"))
			var parseErr *ParseError
			Expect(errors.As(err, &parseErr)).To(BeTrue())
		})

		It("should reject YAML instructions with too many parameters", func() {
			_, err := LoadProgramFromYAML(strings.NewReader(
				"instructions:\n  - {offset: 0, opcode: iinc, params: [1, 2, 3]}\n"))
			Expect(err).To(MatchError(ContainSubstring("illegal format")))
		})
	})
})
