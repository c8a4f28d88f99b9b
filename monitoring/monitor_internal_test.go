package monitoring

import (
	"encoding/json"
	"net/http/httptest"

	"github.com/gorilla/mux"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/wsnlab/wsnsim/medium"
	"github.com/wsnlab/wsnsim/node"
	"github.com/wsnlab/wsnsim/sim"
)

type sampleNode struct {
	name string
	id   medium.NodeID
}

func (n *sampleNode) Name() string              { return n.name }
func (n *sampleNode) ID() medium.NodeID         { return n.id }
func (n *sampleNode) Position() medium.Position { return medium.Position{} }
func (n *sampleNode) Channel() int              { return 7 }
func (n *sampleNode) Kind() node.Kind           { return node.KindSensor }
func (n *sampleNode) Handle(_ sim.Event) error  { return nil }

func (n *sampleNode) OnReceive(_ sim.VTimeInMs, _ medium.Frame) {
	// Do nothing
}

func (n *sampleNode) Snapshot() node.Snapshot {
	return node.Snapshot{ID: n.id, Kind: node.KindSensor, Status: node.StatusOK}
}

var _ = Describe("Monitor", func() {
	var (
		m *Monitor
	)

	BeforeEach(func() {
		m = &Monitor{}
	})

	It("should register nodes", func() {
		m.RegisterNode(&sampleNode{name: "Sensor2", id: 2})
		m.RegisterNode(&sampleNode{name: "Sensor3", id: 3})

		Expect(m.nodes).To(HaveLen(2))
	})

	It("should list node names", func() {
		m.RegisterNode(&sampleNode{name: "Sink1", id: 1})
		m.RegisterNode(&sampleNode{name: "Sensor2", id: 2})

		w := httptest.NewRecorder()
		r := httptest.NewRequest("GET", "/api/nodes", nil)
		m.listNodes(w, r)

		Expect(w.Body.String()).To(Equal(`["Sink1","Sensor2"]`))
	})

	It("should serve node snapshots", func() {
		m.RegisterNode(&sampleNode{name: "Sensor2", id: 2})

		router := mux.NewRouter()
		router.HandleFunc("/api/snapshot/{name}", m.nodeSnapshot)

		w := httptest.NewRecorder()
		r := httptest.NewRequest("GET", "/api/snapshot/Sensor2", nil)
		router.ServeHTTP(w, r)

		var snap node.Snapshot
		Expect(json.Unmarshal(w.Body.Bytes(), &snap)).To(Succeed())
		Expect(snap.ID).To(Equal(medium.NodeID(2)))
		Expect(snap.Status).To(Equal(node.StatusOK))
	})

	It("should 404 on unknown nodes", func() {
		router := mux.NewRouter()
		router.HandleFunc("/api/snapshot/{name}", m.nodeSnapshot)

		w := httptest.NewRecorder()
		r := httptest.NewRequest("GET", "/api/snapshot/Sensor99", nil)
		router.ServeHTTP(w, r)

		Expect(w.Code).To(Equal(404))
	})

	It("should track progress bars", func() {
		bar := m.CreateProgressBar("runs", 10)
		bar.IncrementInProgress(2)
		bar.MoveInProgressToFinished(1)

		Expect(m.progressBars).To(HaveLen(1))
		Expect(bar.Finished).To(Equal(uint64(1)))
		Expect(bar.InProgress).To(Equal(uint64(1)))

		m.CompleteProgressBar(bar)
		Expect(m.progressBars).To(BeEmpty())
	})
})
