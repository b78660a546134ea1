// Package monitoring turns a running simulation into a web server so that it
// can be watched and controlled from outside.
package monitoring

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"runtime/pprof"
	"strconv"
	"sync"
	"time"

	"github.com/google/pprof/profile"
	"github.com/gorilla/mux"
	"github.com/pkg/browser"
	"github.com/shirou/gopsutil/process"
	"github.com/syifan/goseth"

	"github.com/sarchlab/simclock/monitoring/web"
	"github.com/sarchlab/simclock/sim"
	"github.com/sarchlab/simclock/sim/timing"
)

// A SnapshotTeller reports the latest state of the time strategy.
type SnapshotTeller interface {
	Snapshot() timing.Snapshot
}

// A Pauser can hold and release the host loop.
type Pauser interface {
	Pause()
	Continue()
	IsPaused() bool
}

// Monitor can turn a simulation into a server and allows external monitoring
// controlling of the simulation.
type Monitor struct {
	source      SnapshotTeller
	loop        Pauser
	portNumber  int
	idGenerator sim.IDGenerator
	profileTime time.Duration

	progressBarsLock sync.Mutex
	progressBars     []*ProgressBar

	server *http.Server
	url    string
}

// NewMonitor creates a new Monitor
func NewMonitor() *Monitor {
	return &Monitor{
		idGenerator: sim.NewSequentialIDGenerator(),
		profileTime: time.Second,
	}
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

// RegisterSource registers where the monitor reads the strategy state from.
func (m *Monitor) RegisterSource(s SnapshotTeller) {
	m.source = s
}

// RegisterLoop registers the host loop that the monitor can pause.
func (m *Monitor) RegisterLoop(p Pauser) {
	m.loop = p
}

// CreateProgressBar creates a new progress bar.
func (m *Monitor) CreateProgressBar(name string, total uint64) *ProgressBar {
	bar := &ProgressBar{
		ID:        m.idGenerator.Generate(),
		Name:      name,
		StartTime: time.Now(),
		Total:     total,
	}

	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	m.progressBars = append(m.progressBars, bar)

	return bar
}

// CompleteProgressBar removes a bar to be shown on the webpage.
func (m *Monitor) CompleteProgressBar(pb *ProgressBar) {
	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	newBars := make([]*ProgressBar, 0, len(m.progressBars))
	for _, b := range m.progressBars {
		if b != pb {
			newBars = append(newBars, b)
		}
	}

	m.progressBars = newBars
}

// Router returns the HTTP routes of the monitor.
func (m *Monitor) Router() http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/api/pause", m.pauseLoop)
	r.HandleFunc("/api/continue", m.continueLoop)
	r.HandleFunc("/api/now", m.now)
	r.HandleFunc("/api/strategy", m.strategy)
	r.HandleFunc("/api/strategy/details", m.strategyDetails)
	r.HandleFunc("/api/statistics", m.statistics)
	r.HandleFunc("/api/progress", m.listProgressBars)
	r.HandleFunc("/api/resource", m.listResources)
	r.HandleFunc("/api/profile", m.collectProfile)
	r.PathPrefix("/").Handler(http.FileServer(web.GetAssets()))

	return r
}

// StartServer starts the monitor as a web server and returns its URL.
func (m *Monitor) StartServer() (string, error) {
	actualPort := ":0"
	if m.portNumber > 1000 {
		actualPort = ":" + strconv.Itoa(m.portNumber)
	}

	listener, err := net.Listen("tcp", actualPort)
	if err != nil {
		return "", err
	}

	m.url = fmt.Sprintf("http://localhost:%d",
		listener.Addr().(*net.TCPAddr).Port)
	m.server = &http.Server{
		Handler:           m.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	fmt.Fprintf(os.Stderr, "Monitoring simulation with %s\n", m.url)

	go func() {
		err := m.server.Serve(listener)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("monitor stopped: %v", err)
		}
	}()

	return m.url, nil
}

// URL returns the address of the running server.
func (m *Monitor) URL() string {
	return m.url
}

// OpenBrowser shows the monitor in the default web browser.
func (m *Monitor) OpenBrowser() error {
	if m.url == "" {
		return errors.New("monitoring server is not started")
	}

	return browser.OpenURL(m.url)
}

// StopServer shuts the web server down.
func (m *Monitor) StopServer(ctx context.Context) error {
	if m.server == nil {
		return nil
	}

	return m.server.Shutdown(ctx)
}

func (m *Monitor) pauseLoop(w http.ResponseWriter, _ *http.Request) {
	if m.loop == nil {
		http.Error(w, "no host loop to pause", http.StatusNotFound)
		return
	}

	// The frame in progress may still be running; the loop stops at the next
	// frame boundary.
	m.loop.Pause()
	w.WriteHeader(http.StatusAccepted)
}

func (m *Monitor) continueLoop(w http.ResponseWriter, _ *http.Request) {
	if m.loop == nil {
		http.Error(w, "no host loop to continue", http.StatusNotFound)
		return
	}

	m.loop.Continue()
	w.WriteHeader(http.StatusOK)
}

func (m *Monitor) snapshotOr404(w http.ResponseWriter) (timing.Snapshot, bool) {
	if m.source == nil {
		http.Error(w, "no time strategy registered", http.StatusNotFound)
		return timing.Snapshot{}, false
	}

	return m.source.Snapshot(), true
}

func (m *Monitor) now(w http.ResponseWriter, _ *http.Request) {
	s, ok := m.snapshotOr404(w)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "application/json")
	fmt.Fprintf(w, "{\"now\":%.10f,\"frame\":%d}", s.Time, s.Frame)
}

type strategyRsp struct {
	timing.Snapshot
	Paused bool `json:"paused"`
}

func (m *Monitor) strategy(w http.ResponseWriter, _ *http.Request) {
	s, ok := m.snapshotOr404(w)
	if !ok {
		return
	}

	rsp := strategyRsp{Snapshot: s}
	if m.loop != nil {
		rsp.Paused = m.loop.IsPaused()
	}

	writeJSON(w, rsp)
}

func (m *Monitor) strategyDetails(w http.ResponseWriter, _ *http.Request) {
	s, ok := m.snapshotOr404(w)
	if !ok {
		return
	}

	buf := new(bytes.Buffer)

	serializer := goseth.NewSerializer()
	serializer.SetRoot(s)
	serializer.SetMaxDepth(2)

	err := serializer.Serialize(buf)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(buf.Bytes())
}

func (m *Monitor) statistics(w http.ResponseWriter, _ *http.Request) {
	s, ok := m.snapshotOr404(w)
	if !ok {
		return
	}

	writeJSON(w, s.Statistics)
}

func (m *Monitor) listProgressBars(w http.ResponseWriter, _ *http.Request) {
	m.progressBarsLock.Lock()
	bars := make([]progressBarRsp, 0, len(m.progressBars))
	for _, b := range m.progressBars {
		bars = append(bars, b.snapshot())
	}
	m.progressBarsLock.Unlock()

	writeJSON(w, bars)
}

type resourceRsp struct {
	CPUPercent float64 `json:"cpu_percent"`
	MemorySize uint64  `json:"memory_size"`
}

func (m *Monitor) listResources(w http.ResponseWriter, _ *http.Request) {
	pid := os.Getpid()

	proc, err := process.NewProcess(int32(pid))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	cpuPercent, err := proc.CPUPercent()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	memoryInfo, err := proc.MemoryInfo()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, resourceRsp{
		CPUPercent: cpuPercent,
		MemorySize: memoryInfo.RSS,
	})
}

func (m *Monitor) collectProfile(w http.ResponseWriter, _ *http.Request) {
	buf := bytes.NewBuffer(nil)

	err := pprof.StartCPUProfile(buf)
	if err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}

	time.Sleep(m.profileTime)

	pprof.StopCPUProfile()

	prof, err := profile.ParseData(buf.Bytes())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, prof)
}

func writeJSON(w http.ResponseWriter, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	_, err = w.Write(data)
	if err != nil {
		log.Printf("monitor: %v", err)
	}
}
