package mqtt

import (
	"context"
	"time"

	"github.com/kilianp07/dockflow/core/model"
)

// Publisher announces rebalancing plans to trucks and waits for their
// acknowledgments.
type Publisher interface {
	// PublishPlan sends the plan summary and one order per move. It returns
	// the command identifiers of the move orders in plan order.
	PublishPlan(ctx context.Context, plan model.RebalancingPlan) (commandIDs []string, err error)

	// WaitForAck waits for an acknowledgment for the provided command
	// identifier or until the timeout expires.
	WaitForAck(commandID string, timeout time.Duration) (bool, error)
}
