package timing

import (
	"context"
	"net"
)

// triggerPayload is what a Controller sends. The content is ignored by the
// receiving side.
var triggerPayload = []byte("step")

// A Controller drives an ExternalTrigger strategy from the other side of the
// connection. Each Step authorizes one frame.
//
// TCP does not preserve message boundaries. Triggers sent faster than the
// simulation consumes them may be merged and authorize a single frame.
type Controller struct {
	conn net.Conn
}

// DialController connects to a simulation listening at addr.
func DialController(ctx context.Context, addr string) (*Controller, error) {
	var d net.Dialer

	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, err
	}

	return &Controller{conn: conn}, nil
}

// Step sends one trigger.
func (c *Controller) Step() error {
	_, err := c.conn.Write(triggerPayload)
	return err
}

// Close disconnects from the simulation. The simulation then runs freely
// until a controller connects again.
func (c *Controller) Close() error {
	return c.conn.Close()
}
