package timing

import (
	"log"
	"net"

	"github.com/sarchlab/simclock/sim"
)

// ExternalTrigger steps like FixedStep, but before each step it waits for an
// external controller to authorize it. This makes the simulation run in
// lock-step with the controller.
//
// As long as no controller is connected, frames are not held back. This
// keeps the simulation from hanging at startup before a controller attaches.
type ExternalTrigger struct {
	*FixedStep

	channel *TriggerChannel
	logger  *log.Logger
}

// NewExternalTrigger creates an ExternalTrigger strategy and starts listening
// on cfg.SyncAddr. The caller must Close the strategy to release the socket.
func NewExternalTrigger(cfg Config) (*ExternalTrigger, error) {
	cfg = cfg.withDefaults()

	fixed, err := NewFixedStep(cfg)
	if err != nil {
		return nil, err
	}

	channel, err := ListenTrigger(cfg.SyncAddr, cfg.ReceiveTimeout)
	if err != nil {
		return nil, err
	}

	s := &ExternalTrigger{
		FixedStep: fixed,
		channel:   channel,
		logger:    cfg.Logger,
	}

	s.logger.Printf("Waiting for an external trigger on %s", channel.Addr())

	return s, nil
}

// Advance waits for the controller, if one is connected, and then moves the
// simulated time forward by one fixed step.
func (s *ExternalTrigger) Advance() {
	result := s.channel.Wait()
	s.reportWaitResult(result)

	s.step(s, result == Triggered)
}

func (s *ExternalTrigger) reportWaitResult(result WaitResult) {
	var pos *sim.HookPos

	switch result {
	case PeerAccepted:
		s.logger.Printf("External trigger controller connected")
		pos = HookPosPeerConnected
	case PeerDisconnected:
		s.logger.Printf("External trigger controller disconnected")
		pos = HookPosPeerDisconnected
	case Triggered:
		pos = HookPosTriggerReceived
	case TimedOut:
		s.logger.Printf("No trigger received in time, stepping anyway")
		pos = HookPosTriggerTimeout
	default:
		return
	}

	s.InvokeHook(sim.HookCtx{
		Domain: s,
		Pos:    pos,
		Item:   s,
		Detail: result,
	})
}

// Addr returns the address the strategy listens on for a controller.
func (s *ExternalTrigger) Addr() net.Addr {
	return s.channel.Addr()
}

// Connected tells if a controller is currently connected.
func (s *ExternalTrigger) Connected() bool {
	return s.channel.Connected()
}

// Kind returns FixedSimulationStepExternalTrigger.
func (s *ExternalTrigger) Kind() Kind {
	return FixedSimulationStepExternalTrigger
}

// Name returns the name of the strategy.
func (s *ExternalTrigger) Name() string {
	return "Fixed Simulation Step with external trigger"
}

// Close disconnects the controller and stops listening. It may be called
// from another goroutine to unblock a pending Advance.
func (s *ExternalTrigger) Close() error {
	return s.channel.Close()
}
