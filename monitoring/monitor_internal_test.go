package monitoring

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"

	"github.com/sarchlab/simclock/sim/timing"
)

type fixedSource struct {
	snapshot timing.Snapshot
}

func (s fixedSource) Snapshot() timing.Snapshot {
	return s.snapshot
}

var _ = Describe("Monitor", func() {
	var (
		mockCtrl *gomock.Controller
		loop     *MockPauser
		m        *Monitor
		server   *httptest.Server
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		loop = NewMockPauser(mockCtrl)

		m = NewMonitor()
		m.RegisterLoop(loop)
		m.RegisterSource(fixedSource{snapshot: timing.Snapshot{
			Kind:  "FixedSimulationStep",
			Name:  "Fixed Simulation Step",
			Frame: 12,
			Time:  1.2,
			Mean:  0.1,
			Statistics: timing.Statistics{
				timing.StatMeanTime:     0.1,
				timing.StatDiffRealTime: -0.5,
			},
		}})

		server = httptest.NewServer(m.Router())
	})

	AfterEach(func() {
		server.Close()
		mockCtrl.Finish()
	})

	getJSON := func(path string, v any) {
		rsp, err := http.Get(server.URL + path)
		Expect(err).NotTo(HaveOccurred())
		defer rsp.Body.Close()

		Expect(rsp.StatusCode).To(Equal(http.StatusOK))
		Expect(json.NewDecoder(rsp.Body).Decode(v)).To(Succeed())
	}

	It("should report the current time", func() {
		var rsp struct {
			Now   float64 `json:"now"`
			Frame uint64  `json:"frame"`
		}

		getJSON("/api/now", &rsp)

		Expect(rsp.Now).To(BeNumerically("~", 1.2, 1e-9))
		Expect(rsp.Frame).To(Equal(uint64(12)))
	})

	It("should report the strategy", func() {
		loop.EXPECT().IsPaused().Return(true)

		var rsp struct {
			Kind   string `json:"kind"`
			Name   string `json:"name"`
			Paused bool   `json:"paused"`
		}

		getJSON("/api/strategy", &rsp)

		Expect(rsp.Kind).To(Equal("FixedSimulationStep"))
		Expect(rsp.Name).To(Equal("Fixed Simulation Step"))
		Expect(rsp.Paused).To(BeTrue())
	})

	It("should report the statistics", func() {
		stats := map[string]float64{}

		getJSON("/api/statistics", &stats)

		Expect(stats).To(HaveKeyWithValue(timing.StatMeanTime, 0.1))
		Expect(stats).To(HaveKeyWithValue(timing.StatDiffRealTime, -0.5))
	})

	It("should pause and continue the loop", func() {
		loop.EXPECT().Pause()
		loop.EXPECT().Continue()

		rsp, err := http.Post(server.URL+"/api/pause", "", nil)
		Expect(err).NotTo(HaveOccurred())
		rsp.Body.Close()
		Expect(rsp.StatusCode).To(Equal(http.StatusAccepted))

		rsp, err = http.Post(server.URL+"/api/continue", "", nil)
		Expect(err).NotTo(HaveOccurred())
		rsp.Body.Close()
		Expect(rsp.StatusCode).To(Equal(http.StatusOK))
	})

	It("should list progress bars", func() {
		bar := m.CreateProgressBar("Frames", 100)
		bar.IncrementInProgress(41)
		bar.MoveInProgressToFinished(40)

		var bars []progressBarRsp
		getJSON("/api/progress", &bars)

		Expect(bars).To(HaveLen(1))
		Expect(bars[0].Name).To(Equal("Frames"))
		Expect(bars[0].Total).To(Equal(uint64(100)))
		Expect(bars[0].Finished).To(Equal(uint64(40)))
		Expect(bars[0].InProgress).To(Equal(uint64(1)))

		m.CompleteProgressBar(bar)
		getJSON("/api/progress", &bars)
		Expect(bars).To(BeEmpty())
	})

	It("should serve the status page", func() {
		rsp, err := http.Get(server.URL + "/")
		Expect(err).NotTo(HaveOccurred())
		defer rsp.Body.Close()

		Expect(rsp.StatusCode).To(Equal(http.StatusOK))
	})

	It("should answer 404 without a source", func() {
		m.RegisterSource(nil)

		rec := httptest.NewRecorder()
		m.Router().ServeHTTP(rec,
			httptest.NewRequest(http.MethodGet, "/api/now", nil))

		Expect(rec.Code).To(Equal(http.StatusNotFound))
	})

	It("should start and stop the server", func() {
		url, err := m.StartServer()
		Expect(err).NotTo(HaveOccurred())
		Expect(url).To(HavePrefix("http://localhost:"))
		Expect(m.URL()).To(Equal(url))

		Expect(m.StopServer(context.Background())).To(Succeed())
	})
})
