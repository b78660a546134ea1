package simulation

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"

	"github.com/sarchlab/simclock/datarecording"
	"github.com/sarchlab/simclock/sim/timing"
)

var _ = Describe("Simulation", func() {
	var (
		mockCtrl *gomock.Controller
		clock    *MockWallClock
		builder  Builder
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		clock = NewMockWallClock(mockCtrl)
		clock.EXPECT().Now().Return(time.Unix(0, 0)).AnyTimes()

		builder = MakeBuilder().
			WithStrategy(timing.FixedSimulationStep).
			WithFrequency(10).
			WithClock(clock).
			WithLogger(quietLogger())
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should advance with the configured strategy", func() {
		s, err := builder.Build()
		Expect(err).NotTo(HaveOccurred())
		defer s.Terminate()

		Expect(s.ID()).NotTo(BeEmpty())
		Expect(s.Strategy().Kind()).To(Equal(timing.FixedSimulationStep))

		for i := 0; i < 3; i++ {
			s.Advance()
		}

		Expect(s.CurrentTime()).To(BeNumerically("~", 0.3, 1e-12))

		snapshot := s.Snapshot()
		Expect(snapshot.Frame).To(Equal(uint64(3)))
		Expect(snapshot.Time).To(BeNumerically("~", 0.3, 1e-12))
	})

	It("should compare times with half a step of tolerance", func() {
		s, err := builder.Build()
		Expect(err).NotTo(HaveOccurred())
		defer s.Terminate()

		Expect(s.IsAfter(5, 5)).To(BeTrue())
		Expect(s.IsAfter(4.97, 5)).To(BeTrue())
		Expect(s.IsAfter(4.9, 5.1)).To(BeFalse())
	})

	It("should give robots a shifted clock", func() {
		s, err := builder.Build()
		Expect(err).NotTo(HaveOccurred())
		defer s.Terminate()

		s.Advance()
		s.Advance()

		local := s.NewLocalClock(-50)
		Expect(local.Millis()).To(BeNumerically("~", 150, 1e-9))
	})

	It("should reject an unknown strategy", func() {
		_, err := builder.WithStrategy(timing.Kind(42)).Build()

		Expect(err).To(MatchError(timing.ErrUnknownStrategy))
	})

	It("should reject a zero frequency", func() {
		_, err := builder.WithFrequency(0).Build()

		Expect(err).To(MatchError(timing.ErrZeroFrequency))
	})

	It("should reject a monitor port without monitoring", func() {
		_, err := builder.WithMonitorPort(8080).WithoutMonitoring().Build()

		Expect(err).To(HaveOccurred())
	})

	It("should record the frames", func() {
		path := filepath.Join(GinkgoT().TempDir(), "frames")

		s, err := builder.WithRecording(path).Build()
		Expect(err).NotTo(HaveOccurred())

		for i := 0; i < 5; i++ {
			s.Advance()
		}

		Expect(s.Terminate()).To(Succeed())
		Expect(s.Terminate()).To(Succeed())

		reader, err := datarecording.NewReader(path + ".sqlite3")
		Expect(err).NotTo(HaveOccurred())
		defer reader.Close()

		reader.MapTable(datarecording.FrameTable, datarecording.FrameSample{})
		_, total, err := reader.Query(context.Background(),
			datarecording.FrameTable, datarecording.QueryParams{})
		Expect(err).NotTo(HaveOccurred())
		Expect(total).To(Equal(5))

		reader.MapTable(datarecording.RunTable, datarecording.RunInfo{})
		results, _, err := reader.Query(context.Background(),
			datarecording.RunTable, datarecording.QueryParams{
				Where: "Property = ?",
				Args:  []any{"Strategy"},
			})
		Expect(err).NotTo(HaveOccurred())
		Expect(results).To(HaveLen(1))
		Expect(results[0].(*datarecording.RunInfo).Value).
			To(Equal("TimeStrategies.FixedSimulationStep"))
	})

	It("should release the trigger socket on termination", func() {
		s, err := builder.
			WithStrategy(timing.FixedSimulationStepExternalTrigger).
			WithSyncAddr("127.0.0.1:0").
			Build()
		Expect(err).NotTo(HaveOccurred())

		trigger := s.Strategy().(*timing.ExternalTrigger)
		addr := trigger.Addr().String()

		conn, err := net.Dial("tcp", addr)
		Expect(err).NotTo(HaveOccurred())
		conn.Close()

		Expect(s.Terminate()).To(Succeed())

		_, err = net.Dial("tcp", addr)
		Expect(err).To(HaveOccurred())
	})

	It("should serve the state through the monitor", func() {
		s, err := builder.WithMonitoring().Build()
		Expect(err).NotTo(HaveOccurred())
		defer s.Terminate()

		loop := NewHostLoop(s).WithMaxFrames(4)
		s.RegisterLoop(loop)
		Expect(loop.Run(context.Background())).To(Succeed())

		rsp, err := http.Get(s.GetMonitor().URL() + "/api/now")
		Expect(err).NotTo(HaveOccurred())
		defer rsp.Body.Close()

		var now struct {
			Now   float64 `json:"now"`
			Frame uint64  `json:"frame"`
		}
		Expect(json.NewDecoder(rsp.Body).Decode(&now)).To(Succeed())
		Expect(now.Frame).To(Equal(uint64(4)))
		Expect(now.Now).To(BeNumerically("~", 0.4, 1e-9))
	})

	It("should pause while the controller stays silent", func() {
		s, err := builder.
			WithStrategy(timing.FixedSimulationStepExternalTrigger).
			WithSyncAddr("127.0.0.1:0").
			WithMonitoring().
			Build()
		Expect(err).NotTo(HaveOccurred())
		defer s.Terminate()

		loop := NewHostLoop(s)
		s.RegisterLoop(loop)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		done := make(chan error, 1)
		go func() {
			done <- loop.Run(ctx)
		}()

		trigger := s.Strategy().(*timing.ExternalTrigger)
		conn, err := net.Dial("tcp", trigger.Addr().String())
		Expect(err).NotTo(HaveOccurred())
		defer conn.Close()

		Eventually(trigger.Connected).Should(BeTrue())

		frames := loop.Frames()
		Consistently(loop.Frames, 50*time.Millisecond).Should(Equal(frames))
		Expect(loop.InFrame()).To(BeTrue())

		client := &http.Client{Timeout: time.Second}
		rsp, err := client.Post(s.GetMonitor().URL()+"/api/pause", "", nil)
		Expect(err).NotTo(HaveOccurred())
		rsp.Body.Close()

		Expect(rsp.StatusCode).To(Equal(http.StatusAccepted))
		Expect(loop.IsPaused()).To(BeTrue())
		Expect(loop.InFrame()).To(BeTrue())

		cancel()
		Expect(s.Terminate()).To(Succeed())
		Eventually(done).Should(Receive(MatchError(context.Canceled)))
	})
})
