package loader_test

import (
	"os"
	"path/filepath"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/pipesim/loader"
)

var _ = Describe("Loader", func() {
	Describe("Parse", func() {
		It("should trim lines and keep their order", func() {
			prog, err := loader.Parse(strings.NewReader(
				"  lw $2, 0($0)\t\n" +
					"add $3, $2, $2   \r\n" +
					"sw $3, 1($0)"))
			Expect(err).NotTo(HaveOccurred())
			Expect(prog.Lines).To(Equal([]string{
				"lw $2, 0($0)",
				"add $3, $2, $2",
				"sw $3, 1($0)",
			}))
			Expect(prog.Len()).To(Equal(3))
		})

		It("should drop blank lines and comments", func() {
			prog, err := loader.Parse(strings.NewReader(
				"# load-use example\n\n   \nlw $2, 0($0)\n  # trailing note\nadd $3, $2, $2\n"))
			Expect(err).NotTo(HaveOccurred())
			Expect(prog.Lines).To(Equal([]string{"lw $2, 0($0)", "add $3, $2, $2"}))
		})

		It("should keep duplicate lines", func() {
			prog, err := loader.Parse(strings.NewReader("add $1, $1, $1\nadd $1, $1, $1\n"))
			Expect(err).NotTo(HaveOccurred())
			Expect(prog.Len()).To(Equal(2))
		})

		It("should load an empty program", func() {
			prog, err := loader.Parse(strings.NewReader(""))
			Expect(err).NotTo(HaveOccurred())
			Expect(prog.Len()).To(BeZero())
		})

		It("should not validate instruction text", func() {
			prog, err := loader.Parse(strings.NewReader("mul $1, $2, $3\n"))
			Expect(err).NotTo(HaveOccurred())
			Expect(prog.Lines).To(Equal([]string{"mul $1, $2, $3"}))
		})
	})

	Describe("Load", func() {
		It("should read a program file", func() {
			dir, err := os.MkdirTemp("", "pipesim-loader")
			Expect(err).NotTo(HaveOccurred())
			DeferCleanup(os.RemoveAll, dir)

			path := filepath.Join(dir, "prog.txt")
			Expect(os.WriteFile(path, []byte("beq $1, $1, 2\nadd $5, $0, $0\nadd $6, $1, $1\n"), 0644)).
				To(Succeed())

			prog, err := loader.Load(path)
			Expect(err).NotTo(HaveOccurred())
			Expect(prog.Path).To(Equal(path))
			Expect(prog.Len()).To(Equal(3))
			Expect(prog.Lines[0]).To(Equal("beq $1, $1, 2"))
		})

		It("should fail on a missing file", func() {
			_, err := loader.Load("/nonexistent/prog.txt")
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("failed to open program file"))
		})
	})
})
