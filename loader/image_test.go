package loader_test

import (
	"encoding/binary"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/m2sim-ooo/loader"
)

var _ = Describe("Load", func() {
	var path string

	BeforeEach(func() {
		path = filepath.Join(GinkgoT().TempDir(), "prog.bin")
		buf := make([]byte, 12)
		binary.LittleEndian.PutUint32(buf[0:], 0x20010005)
		binary.LittleEndian.PutUint32(buf[4:], 0x20020007)
		binary.LittleEndian.PutUint32(buf[8:], 0xfc000000)
		Expect(os.WriteFile(path, buf, 0o644)).To(Succeed())
	})

	It("decodes a flat binary image into little-endian words", func() {
		prog, err := loader.Load(path)
		Expect(err).NotTo(HaveOccurred())

		Expect(prog.TextBase).To(Equal(uint32(loader.DefaultTextBase)))
		Expect(prog.EntryPoint).To(Equal(uint32(loader.DefaultTextBase)))
		Expect(prog.Words).To(HaveLen(3))
		Expect(prog.Words[0]).To(Equal(uint32(0x20010005)))
		Expect(prog.Words[2]).To(Equal(uint32(0xfc000000)))
	})

	It("rejects an image whose length is not a multiple of 4 bytes", func() {
		bad := filepath.Join(GinkgoT().TempDir(), "bad.bin")
		Expect(os.WriteFile(bad, []byte{1, 2, 3}, 0o644)).To(Succeed())

		_, err := loader.Load(bad)
		Expect(err).To(HaveOccurred())
	})

	It("loads an accompanying data image at the default data base", func() {
		dataPath := filepath.Join(GinkgoT().TempDir(), "data.bin")
		Expect(os.WriteFile(dataPath, []byte{1, 2, 3, 4}, 0o644)).To(Succeed())

		prog, err := loader.LoadWithData(path, dataPath)
		Expect(err).NotTo(HaveOccurred())
		Expect(prog.DataBase).To(Equal(uint32(loader.DefaultDataBase)))
		Expect(prog.Data).To(Equal([]byte{1, 2, 3, 4}))
	})
})
