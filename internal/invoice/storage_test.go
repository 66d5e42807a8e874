package invoice

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("LocalStorage", func() {
	var (
		tmpDir  string
		storage Storage
	)

	BeforeEach(func() {
		tmpDir = GinkgoT().TempDir()
		var err error
		storage, err = NewLocalStorage(filepath.Join(tmpDir, "uploads"))
		Expect(err).NotTo(HaveOccurred())
	})

	Describe("NewLocalStorage", func() {
		It("creates the directory", func() {
			Expect(filepath.Join(tmpDir, "uploads")).To(BeADirectory())
		})
	})

	Describe("Save", func() {
		var (
			filename  string
			savedPath string
			err       error
		)

		BeforeEach(func() {
			filename = "id_invoice.pdf"
		})

		JustBeforeEach(func() {
			savedPath, err = storage.Save(filename, []byte("test file content"))
		})

		When("saving succeeds", func() {
			It("returns the name", func() {
				Expect(err).NotTo(HaveOccurred())
				Expect(savedPath).To(Equal(filename))
			})

			It("writes the file to disk", func() {
				content, readErr := os.ReadFile(filepath.Join(tmpDir, "uploads", filename))
				Expect(readErr).NotTo(HaveOccurred())
				Expect(string(content)).To(Equal("test file content"))
			})
		})

		When("the name escapes the directory", func() {
			BeforeEach(func() {
				filename = "../escape.pdf"
			})

			It("returns an error", func() {
				Expect(err).To(MatchError(ContainSubstring("invalid file name")))
				Expect(filepath.Join(tmpDir, "escape.pdf")).NotTo(BeAnExistingFile())
			})
		})
	})

	Describe("Get", func() {
		When("the file exists", func() {
			BeforeEach(func() {
				_, err := storage.Save("stored.png", []byte("png bytes"))
				Expect(err).NotTo(HaveOccurred())
			})

			It("returns its content", func() {
				data, err := storage.Get("stored.png")
				Expect(err).NotTo(HaveOccurred())
				Expect(data).To(Equal([]byte("png bytes")))
			})
		})

		When("the file does not exist", func() {
			It("returns an error", func() {
				_, err := storage.Get("missing.png")
				Expect(err).To(HaveOccurred())
			})
		})
	})

	Describe("Delete", func() {
		When("the file exists", func() {
			BeforeEach(func() {
				_, err := storage.Save("stored.png", []byte("png bytes"))
				Expect(err).NotTo(HaveOccurred())
			})

			It("removes it", func() {
				Expect(storage.Delete("stored.png")).To(Succeed())
				Expect(filepath.Join(tmpDir, "uploads", "stored.png")).NotTo(BeAnExistingFile())
			})
		})

		When("the file does not exist", func() {
			It("returns an error", func() {
				Expect(storage.Delete("missing.png")).NotTo(Succeed())
			})
		})
	})
})
