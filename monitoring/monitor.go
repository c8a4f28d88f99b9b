// Package monitoring turns a running simulation into a small web server so
// the run can be paused, inspected, and profiled from outside.
package monitoring

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"runtime/pprof"
	"strconv"
	"sync"
	"time"

	// Enable profiling
	_ "net/http/pprof"

	"github.com/google/pprof/profile"
	"github.com/gorilla/mux"
	"github.com/pkg/browser"
	"github.com/shirou/gopsutil/process"
	"github.com/syifan/goseth"

	"github.com/wsnlab/wsnsim/node"
	"github.com/wsnlab/wsnsim/sim"
)

// Monitor exposes a simulation over HTTP for external monitoring and
// controlling.
type Monitor struct {
	engine      sim.Engine
	nodes       []node.Node
	portNumber  int
	openBrowser bool

	progressBarsLock sync.Mutex
	progressBars     []*ProgressBar
}

// NewMonitor creates a new Monitor.
func NewMonitor() *Monitor {
	return &Monitor{}
}

// WithPortNumber sets the port number of the monitor.
func (m *Monitor) WithPortNumber(portNumber int) *Monitor {
	if portNumber < 1000 {
		fmt.Fprintf(os.Stderr,
			"Port number %d is assigned to the monitoring server, "+
				"which is not allowed. Using a random port instead.\n", portNumber)
		portNumber = 0
	}

	m.portNumber = portNumber

	return m
}

// WithBrowser opens the monitor page in the default browser once the server
// is listening.
func (m *Monitor) WithBrowser() *Monitor {
	m.openBrowser = true
	return m
}

// RegisterEngine registers the engine that drives the simulation.
func (m *Monitor) RegisterEngine(e sim.Engine) {
	m.engine = e
}

// RegisterNode registers a node to be monitored.
func (m *Monitor) RegisterNode(n node.Node) {
	m.nodes = append(m.nodes, n)
}

// CreateProgressBar creates a new progress bar.
func (m *Monitor) CreateProgressBar(name string, total uint64) *ProgressBar {
	bar := &ProgressBar{
		ID:    sim.GetIDGenerator().Generate(),
		Name:  name,
		Total: total,
	}

	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	m.progressBars = append(m.progressBars, bar)

	return bar
}

// CompleteProgressBar removes a finished bar from the listing.
func (m *Monitor) CompleteProgressBar(pb *ProgressBar) {
	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	newBars := make([]*ProgressBar, 0, len(m.progressBars)-1)
	for _, b := range m.progressBars {
		if b != pb {
			newBars = append(newBars, b)
		}
	}

	m.progressBars = newBars
}

// StartServer starts the monitor as a web server.
func (m *Monitor) StartServer() {
	r := mux.NewRouter()

	r.HandleFunc("/api/pause", m.pauseEngine)
	r.HandleFunc("/api/continue", m.continueEngine)
	r.HandleFunc("/api/now", m.now)
	r.HandleFunc("/api/run", m.run)
	r.HandleFunc("/api/nodes", m.listNodes)
	r.HandleFunc("/api/node/{name}", m.nodeDetails)
	r.HandleFunc("/api/snapshot/{name}", m.nodeSnapshot)
	r.HandleFunc("/api/progress", m.listProgressBars)
	r.HandleFunc("/api/resource", m.listResources)
	r.HandleFunc("/api/profile", m.collectProfile)
	http.Handle("/", r)

	actualPort := ":0"
	if m.portNumber > 1000 {
		actualPort = ":" + strconv.Itoa(m.portNumber)
	}

	listener, err := net.Listen("tcp", actualPort)
	dieOnErr(err)

	url := fmt.Sprintf("http://localhost:%d",
		listener.Addr().(*net.TCPAddr).Port)
	fmt.Fprintf(os.Stderr, "Monitoring simulation with %s\n", url)

	if m.openBrowser {
		err := browser.OpenURL(url)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open browser: %s\n", err)
		}
	}

	go func() {
		err = http.Serve(listener, nil)
		dieOnErr(err)
	}()
}

// engineOr503 reports whether an engine is registered. A monitor can track
// batch progress without one; the engine endpoints are then unavailable.
func (m *Monitor) engineOr503(w http.ResponseWriter) bool {
	if m.engine == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return false
	}
	return true
}

func (m *Monitor) pauseEngine(w http.ResponseWriter, _ *http.Request) {
	if !m.engineOr503(w) {
		return
	}

	m.engine.Pause()
	_, err := w.Write(nil)
	dieOnErr(err)
}

func (m *Monitor) continueEngine(w http.ResponseWriter, _ *http.Request) {
	if !m.engineOr503(w) {
		return
	}

	m.engine.Continue()
	_, err := w.Write(nil)
	dieOnErr(err)
}

func (m *Monitor) now(w http.ResponseWriter, _ *http.Request) {
	if !m.engineOr503(w) {
		return
	}

	now := m.engine.CurrentTime()
	fmt.Fprintf(w, "{\"now\":%.10f}", now)
}

func (m *Monitor) run(w http.ResponseWriter, _ *http.Request) {
	if !m.engineOr503(w) {
		return
	}

	go func() {
		err := m.engine.Run()
		if err != nil {
			panic(err)
		}
	}()
}

func (m *Monitor) listNodes(w http.ResponseWriter, _ *http.Request) {
	fmt.Fprint(w, "[")
	for i, n := range m.nodes {
		if i > 0 {
			fmt.Fprint(w, ",")
		}

		fmt.Fprintf(w, "\"%s\"", n.Name())
	}
	fmt.Fprint(w, "]")
}

func (m *Monitor) nodeDetails(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	n := m.findNodeOr404(w, name)
	if n == nil {
		return
	}

	serializer := goseth.NewSerializer()
	serializer.SetRoot(n)
	serializer.SetMaxDepth(1)
	err := serializer.Serialize(w)

	dieOnErr(err)
}

func (m *Monitor) nodeSnapshot(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	n := m.findNodeOr404(w, name)
	if n == nil {
		return
	}

	bytes, err := json.Marshal(n.Snapshot())
	dieOnErr(err)

	_, err = w.Write(bytes)
	dieOnErr(err)
}

func (m *Monitor) findNodeOr404(
	w http.ResponseWriter,
	name string,
) node.Node {
	var found node.Node
	for _, n := range m.nodes {
		if n.Name() == name {
			found = n
		}
	}

	if found == nil {
		w.WriteHeader(http.StatusNotFound)
		_, err := w.Write([]byte("Node not found"))
		dieOnErr(err)
	}

	return found
}

func (m *Monitor) listProgressBars(w http.ResponseWriter, _ *http.Request) {
	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	bytes, err := json.Marshal(m.progressBars)
	dieOnErr(err)

	_, err = w.Write(bytes)
	dieOnErr(err)
}

type resourceRsp struct {
	CPUPercent float64 `json:"cpu_percent"`
	MemorySize uint64  `json:"memory_size"`
}

func (m *Monitor) listResources(w http.ResponseWriter, _ *http.Request) {
	pid := os.Getpid()
	proc, err := process.NewProcess(int32(pid))
	dieOnErr(err)

	cpuPercent, err := proc.CPUPercent()
	dieOnErr(err)

	memorySize, err := proc.MemoryInfo()
	dieOnErr(err)

	rsp := resourceRsp{
		CPUPercent: cpuPercent,
		MemorySize: memorySize.RSS,
	}

	bytes, err := json.Marshal(rsp)
	dieOnErr(err)

	_, err = w.Write(bytes)
	dieOnErr(err)
}

func (m *Monitor) collectProfile(w http.ResponseWriter, _ *http.Request) {
	buf := bytes.NewBuffer(nil)

	err := pprof.StartCPUProfile(buf)
	dieOnErr(err)

	time.Sleep(time.Second)

	pprof.StopCPUProfile()

	prof, err := profile.ParseData(buf.Bytes())
	dieOnErr(err)

	bytes, err := json.Marshal(prof)
	dieOnErr(err)

	_, err = w.Write(bytes)
	dieOnErr(err)
}

func dieOnErr(err error) {
	if err != nil {
		log.Panic(err)
	}
}
