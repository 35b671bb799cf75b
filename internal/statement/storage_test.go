package statement

import (
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
		tmpDir = filepath.Join(GinkgoT().TempDir(), "uploads")
		var err error
		storage, err = NewLocalStorage(tmpDir)
		Expect(err).NotTo(HaveOccurred())
	})

	It("creates the base directory", func() {
		Expect(tmpDir).To(BeADirectory())
	})

	Describe("Save", func() {
		It("writes the file and returns its name", func() {
			name, err := storage.Save("statement.pdf", []byte("content"))
			Expect(err).NotTo(HaveOccurred())
			Expect(name).To(Equal("statement.pdf"))
			Expect(filepath.Join(tmpDir, "statement.pdf")).To(BeAnExistingFile())
		})

		It("keeps names inside the base directory", func() {
			name, err := storage.Save("../escape.pdf", []byte("content"))
			Expect(err).NotTo(HaveOccurred())
			Expect(name).To(Equal("escape.pdf"))
			Expect(filepath.Join(tmpDir, "escape.pdf")).To(BeAnExistingFile())
		})
	})

	Describe("Get", func() {
		It("reads back saved data", func() {
			_, err := storage.Save("statement.pdf", []byte("content"))
			Expect(err).NotTo(HaveOccurred())
			data, err := storage.Get("statement.pdf")
			Expect(err).NotTo(HaveOccurred())
			Expect(string(data)).To(Equal("content"))
		})

		It("fails for a missing file", func() {
			_, err := storage.Get("missing.pdf")
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("Delete", func() {
		It("removes the file", func() {
			_, err := storage.Save("statement.pdf", []byte("content"))
			Expect(err).NotTo(HaveOccurred())
			Expect(storage.Delete("statement.pdf")).To(Succeed())
			Expect(filepath.Join(tmpDir, "statement.pdf")).NotTo(BeAnExistingFile())
		})

		It("fails for a missing file", func() {
			Expect(storage.Delete("missing.pdf")).NotTo(Succeed())
		})
	})
})
