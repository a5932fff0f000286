package nmos_test

import (
	"github.com/avoip/herald/src/herald/mdns"
	"github.com/avoip/herald/src/herald/mdns/wire"
	"github.com/avoip/herald/src/herald/names"
	. "github.com/avoip/herald/src/herald/nmos"

	"github.com/dogmatiq/dodeca/logging"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("Handler", func() {
	var (
		handler   *Handler
		registrar *registrarStub
		resolver  *resolverStub
		answers   *answerRecorder
	)

	question := func(name string) *mdns.Question {
		return &mdns.Question{
			Name:  names.MustParse(name),
			Type:  wire.TypePTR,
			Class: wire.ClassIN,
		}
	}

	BeforeEach(func() {
		registrar = &registrarStub{}
		resolver = &resolverStub{}
		answers = &answerRecorder{}

		handler = NewHandler(
			&nodeStub{mdns.Identity{NodeID: "node-1", NodeName: "host1"}},
			registryStub{},
			registrar,
			resolver,
			logging.SilentLogger,
		)
	})

	Describe("HandleQuestion", func() {
		It("answers a node API query with the API's TXT description", func() {
			d := handler.HandleQuestion(question("_nmos-node._tcp.local"), answers)

			Expect(d).To(Equal(mdns.Handled))

			instance := names.MustParse("node-1._nmos-node._tcp.local")

			Expect(answers.entries).To(HaveLen(9))
			for _, e := range answers.entries {
				Expect(e.Kind).To(Equal("TXT"))
				Expect(e.Name).To(Equal(instance))
			}

			texts := make([]string, len(answers.entries))
			for i, e := range answers.entries {
				texts[i] = e.Text
			}

			Expect(texts).To(Equal([]string{
				"api_proto=http",
				"api_ver=v1.3",
				"api_auth=false",
				"ver_slf=1",
				"ver_src=2",
				"ver_flw=3",
				"ver_dvc=4",
				"ver_snd=5",
				"ver_rcv=6",
			}))
		})

		It("claims a registration API query without answering", func() {
			d := handler.HandleQuestion(question("_nmos-register._tcp.local"), answers)

			Expect(d).To(Equal(mdns.Handled))
			Expect(answers.entries).To(BeEmpty())
		})

		It("claims a query API query without answering", func() {
			d := handler.HandleQuestion(question("_nmos-query._tcp.local"), answers)

			Expect(d).To(Equal(mdns.Handled))
			Expect(answers.entries).To(BeEmpty())
		})

		It("passes on unrelated questions", func() {
			d := handler.HandleQuestion(question("_http._tcp.local"), answers)

			Expect(d).To(Equal(mdns.NotYetHandled))
			Expect(answers.entries).To(BeEmpty())
		})
	})
})
