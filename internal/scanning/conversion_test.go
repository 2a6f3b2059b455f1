package scanning

import (
	"bytes"
	"image"
	"image/jpeg"
	"image/png"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func encodeImage(encode func(*bytes.Buffer, image.Image) error) []byte {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	var buf bytes.Buffer
	Expect(encode(&buf, img)).To(Succeed())
	return buf.Bytes()
}

var _ = Describe("SplitDocument", func() {
	When("the document is a PNG image", func() {
		It("returns a single PNG page", func() {
			data := encodeImage(func(buf *bytes.Buffer, img image.Image) error {
				return png.Encode(buf, img)
			})

			pages, err := SplitDocument(data, "image/png", 100)
			Expect(err).NotTo(HaveOccurred())
			Expect(pages).To(HaveLen(1))

			_, err = png.Decode(bytes.NewReader(pages[0]))
			Expect(err).NotTo(HaveOccurred())
		})
	})

	When("the document is a JPEG image", func() {
		It("converts it to a single PNG page", func() {
			data := encodeImage(func(buf *bytes.Buffer, img image.Image) error {
				return jpeg.Encode(buf, img, nil)
			})

			pages, err := SplitDocument(data, "image/jpeg", 100)
			Expect(err).NotTo(HaveOccurred())
			Expect(pages).To(HaveLen(1))

			_, err = png.Decode(bytes.NewReader(pages[0]))
			Expect(err).NotTo(HaveOccurred())
		})
	})

	When("the document is not a decodable image", func() {
		It("returns an error", func() {
			_, err := SplitDocument([]byte("garbage"), "image/jpeg", 100)
			Expect(err).To(HaveOccurred())
		})
	})
})

var _ = Describe("isPDFData", func() {
	It("recognizes the PDF magic bytes", func() {
		Expect(isPDFData([]byte("%PDF-1.4 content"))).To(BeTrue())
	})

	It("rejects other content", func() {
		Expect(isPDFData([]byte("PNG content"))).To(BeFalse())
		Expect(isPDFData([]byte("%P"))).To(BeFalse())
	})
})

var _ = Describe("isHEICFormat", func() {
	It("recognizes an ftyp box with a HEIC brand", func() {
		data := append([]byte{0, 0, 0, 24}, []byte("ftypheic")...)
		data = append(data, make([]byte, 8)...)
		Expect(isHEICFormat(data)).To(BeTrue())
	})

	It("rejects short or unrelated data", func() {
		Expect(isHEICFormat([]byte("tiny"))).To(BeFalse())
		Expect(isHEICFormat(append([]byte{0, 0, 0, 24}, []byte("ftypisom")...))).To(BeFalse())
	})
})

var _ = Describe("isHEICMimeType", func() {
	It("matches heic and heif MIME types", func() {
		Expect(isHEICMimeType("image/heic")).To(BeTrue())
		Expect(isHEICMimeType(" IMAGE/HEIF ")).To(BeTrue())
		Expect(isHEICMimeType("image/jpeg")).To(BeFalse())
	})
})
