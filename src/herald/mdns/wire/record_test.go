package wire_test

import (
	"net"

	"github.com/avoip/herald/src/herald/mdns/wire"
	"github.com/avoip/herald/src/herald/names"

	"github.com/miekg/dns"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

// packAnswers packs a reply containing the given records using the reference
// implementation.
func packAnswers(compress bool, rr ...dns.RR) []byte {
	m := &dns.Msg{}
	m.Response = true
	m.Compress = compress
	m.Answer = rr

	msg, err := m.Pack()
	Expect(err).ShouldNot(HaveOccurred())

	return msg
}

func header(name string, t uint16, ttl uint32) dns.RR_Header {
	return dns.RR_Header{
		Name:   name,
		Rrtype: t,
		Class:  dns.ClassINET,
		Ttl:    ttl,
	}
}

var _ = Describe("ParseRecord", func() {
	It("parses an A record", func() {
		msg := packAnswers(
			false,
			&dns.A{
				Hdr: header("myservice.local.", dns.TypeA, 120),
				A:   net.IPv4(192, 168, 1, 10),
			},
		)

		r, off, err := wire.ParseRecord(msg, wire.HeaderLength)

		Expect(err).ShouldNot(HaveOccurred())
		Expect(r.Name).To(Equal(names.New("myservice", "local")))
		Expect(r.Type).To(Equal(wire.TypeA))
		Expect(r.Class).To(Equal(wire.ClassIN))
		Expect(r.TTL).To(Equal(uint32(120)))
		Expect(r.A.Equal(net.IPv4(192, 168, 1, 10))).To(BeTrue())
		Expect(off).To(Equal(len(msg)))
	})

	It("parses an AAAA record", func() {
		ip := net.ParseIP("2001:db8::567:89ab")

		msg := packAnswers(
			false,
			&dns.AAAA{
				Hdr:  header("myservice.local.", dns.TypeAAAA, 120),
				AAAA: ip,
			},
		)

		r, _, err := wire.ParseRecord(msg, wire.HeaderLength)

		Expect(err).ShouldNot(HaveOccurred())
		Expect(r.Type).To(Equal(wire.TypeAAAA))
		Expect(r.AAAA.Equal(ip)).To(BeTrue())
	})

	It("parses a PTR record", func() {
		msg := packAnswers(
			false,
			&dns.PTR{
				Hdr: header("_http._tcp.local.", dns.TypePTR, 4500),
				Ptr: "myservice.local.",
			},
		)

		r, _, err := wire.ParseRecord(msg, wire.HeaderLength)

		Expect(err).ShouldNot(HaveOccurred())
		Expect(r.Type).To(Equal(wire.TypePTR))
		Expect(r.TTL).To(Equal(uint32(4500)))
		Expect(r.PTR).To(Equal(names.New("myservice", "local")))
	})

	It("resolves compressed names in a PTR payload against the whole datagram", func() {
		msg := packAnswers(
			true,
			&dns.PTR{
				Hdr: header("myservice.local.", dns.TypePTR, 4500),
				Ptr: "printer.myservice.local.",
			},
		)

		r, _, err := wire.ParseRecord(msg, wire.HeaderLength)

		Expect(err).ShouldNot(HaveOccurred())
		Expect(r.PTR).To(Equal(names.New("printer", "myservice", "local")))
	})

	It("parses an SRV record", func() {
		msg := packAnswers(
			false,
			&dns.SRV{
				Hdr:      header("myservice._http._tcp.local.", dns.TypeSRV, 120),
				Priority: 10,
				Weight:   20,
				Port:     8080,
				Target:   "host.local.",
			},
		)

		r, _, err := wire.ParseRecord(msg, wire.HeaderLength)

		Expect(err).ShouldNot(HaveOccurred())
		Expect(r.Type).To(Equal(wire.TypeSRV))
		Expect(r.SRV).NotTo(BeNil())
		Expect(r.SRV.Priority).To(Equal(uint16(10)))
		Expect(r.SRV.Weight).To(Equal(uint16(20)))
		Expect(r.SRV.Port).To(Equal(uint16(8080)))
		Expect(r.SRV.Target).To(Equal(names.New("host", "local")))
	})

	It("parses the key/value pairs of a TXT record", func() {
		msg := packAnswers(
			false,
			&dns.TXT{
				Hdr: header("myservice._http._tcp.local.", dns.TypeTXT, 4500),
				Txt: []string{"api_ver=v1.3", "flag"},
			},
		)

		r, _, err := wire.ParseRecord(msg, wire.HeaderLength)

		Expect(err).ShouldNot(HaveOccurred())
		Expect(r.TXT).To(Equal(wire.TXT{
			{Key: "api_ver", Value: "v1.3"},
			{Key: "flag", Value: ""},
		}))
	})

	It("separates the cache-flush bit from the class", func() {
		msg := append(
			pad(wire.HeaderLength),
			1, 'x', 0,
			0x00, 0x01, // type A
			0x80, 0x01, // class IN with the cache-flush bit set
			0x00, 0x00, 0x00, 0x78, // TTL
			0x00, 0x04, // rdlen
			192, 168, 1, 10,
		)

		r, _, err := wire.ParseRecord(msg, wire.HeaderLength)

		Expect(err).ShouldNot(HaveOccurred())
		Expect(r.Class).To(Equal(wire.ClassIN))
		Expect(r.CacheFlush).To(BeTrue())
	})

	It("retains only the raw payload for unknown record types", func() {
		msg := append(
			pad(wire.HeaderLength),
			1, 'x', 0,
			0x00, 0xC8, // type 200
			0x00, 0x01,
			0x00, 0x00, 0x00, 0x78,
			0x00, 0x03,
			0xAA, 0xBB, 0xCC,
		)

		r, _, err := wire.ParseRecord(msg, wire.HeaderLength)

		Expect(err).ShouldNot(HaveOccurred())
		Expect(r.Type).To(Equal(wire.RRType(200)))
		Expect(r.Data).To(Equal([]byte{0xAA, 0xBB, 0xCC}))
		Expect(r.A).To(BeNil())
		Expect(r.PTR).To(BeNil())
		Expect(r.TXT).To(BeNil())
		Expect(r.SRV).To(BeNil())
	})

	It("fails if the fixed fields are missing", func() {
		msg := append(
			pad(wire.HeaderLength),
			1, 'x', 0,
			0x00, 0x01,
		)

		_, _, err := wire.ParseRecord(msg, wire.HeaderLength)

		Expect(err).To(HaveOccurred())
	})

	It("fails if the payload length exceeds the remaining octets", func() {
		msg := append(
			pad(wire.HeaderLength),
			1, 'x', 0,
			0x00, 0x01,
			0x00, 0x01,
			0x00, 0x00, 0x00, 0x78,
			0x00, 0x0A, // rdlen 10
			0xAA, 0xBB, // only 2 octets remain
		)

		_, _, err := wire.ParseRecord(msg, wire.HeaderLength)

		Expect(err).To(HaveOccurred())
	})

	It("fails if an A record does not carry exactly 4 octets", func() {
		msg := append(
			pad(wire.HeaderLength),
			1, 'x', 0,
			0x00, 0x01,
			0x00, 0x01,
			0x00, 0x00, 0x00, 0x78,
			0x00, 0x03,
			192, 168, 1,
		)

		_, _, err := wire.ParseRecord(msg, wire.HeaderLength)

		Expect(err).To(HaveOccurred())
	})

	It("fails if an SRV record is shorter than its fixed fields", func() {
		msg := append(
			pad(wire.HeaderLength),
			1, 'x', 0,
			0x00, 0x21, // type SRV
			0x00, 0x01,
			0x00, 0x00, 0x00, 0x78,
			0x00, 0x04,
			0x00, 0x00, 0x00, 0x00,
		)

		_, _, err := wire.ParseRecord(msg, wire.HeaderLength)

		Expect(err).To(HaveOccurred())
	})

	It("fails if a TXT character string overruns the payload", func() {
		msg := append(
			pad(wire.HeaderLength),
			1, 'x', 0,
			0x00, 0x10, // type TXT
			0x00, 0x01,
			0x00, 0x00, 0x00, 0x78,
			0x00, 0x03,
			5, 'a', 'b',
		)

		_, _, err := wire.ParseRecord(msg, wire.HeaderLength)

		Expect(err).To(HaveOccurred())
	})

	It("stops parsing TXT pairs at a zero-length string", func() {
		msg := append(
			pad(wire.HeaderLength),
			1, 'x', 0,
			0x00, 0x10,
			0x00, 0x01,
			0x00, 0x00, 0x00, 0x78,
			0x00, 0x09,
			3, 'a', '=', 'b',
			0,
			3, 'x', 'y', 'z',
		)

		r, _, err := wire.ParseRecord(msg, wire.HeaderLength)

		Expect(err).ShouldNot(HaveOccurred())
		Expect(r.TXT).To(Equal(wire.TXT{{Key: "a", Value: "b"}}))
	})
})

var _ = Describe("TXT", func() {
	txt := wire.TXT{
		{Key: "api_proto", Value: "http"},
		{Key: "flag", Value: ""},
	}

	Describe("Get", func() {
		It("returns the value of a present key", func() {
			v, ok := txt.Get("api_proto")

			Expect(ok).To(BeTrue())
			Expect(v).To(Equal("http"))
		})

		It("reports an absent key", func() {
			_, ok := txt.Get("api_ver")
			Expect(ok).To(BeFalse())
		})
	})

	Describe("Has", func() {
		It("reports the presence of a key with an empty value", func() {
			Expect(txt.Has("flag")).To(BeTrue())
			Expect(txt.Has("other")).To(BeFalse())
		})
	})
})
