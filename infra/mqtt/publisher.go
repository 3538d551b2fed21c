package mqtt

import (
	"context"
	"time"

	"github.com/kilianp07/dockflow/core/model"
	coremqtt "github.com/kilianp07/dockflow/core/mqtt"
)

// Publisher mirrors the core mqtt.Publisher interface.
type Publisher = coremqtt.Publisher

// PlanMessage is the payload published on the plans topic.
type PlanMessage struct {
	PlanID    string              `json:"plan_id"`
	Status    model.PlanStatus    `json:"status"`
	Reason    *model.PlanReason   `json:"reason,omitempty"`
	Moves     []model.PlannedMove `json:"moves"`
	Bikes     int                 `json:"bikes"`
	CreatedAt int64               `json:"created_at"`
}

// NewPlanMessage converts a plan to its wire form.
func NewPlanMessage(p model.RebalancingPlan) PlanMessage {
	moves := p.Moves
	if moves == nil {
		moves = []model.PlannedMove{}
	}
	return PlanMessage{
		PlanID:    p.ID,
		Status:    p.Status,
		Reason:    p.Reason,
		Moves:     moves,
		Bikes:     p.TotalQuantity(),
		CreatedAt: p.CreatedAt.UnixMilli(),
	}
}

// MoveOrder is the payload sent to a single truck.
type MoveOrder struct {
	CommandID         string `json:"command_id"`
	PlanID            string `json:"plan_id"`
	Truck             int    `json:"truck"`
	DonorStationID    string `json:"donor_station_id"`
	ReceiverStationID string `json:"receiver_station_id"`
	Quantity          int    `json:"quantity"`
	TravelMinutes     int    `json:"travel_minutes"`
	Timestamp         int64  `json:"timestamp"`
}

func NewMoveOrder(commandID, planID string, mv model.PlannedMove) MoveOrder {
	return MoveOrder{
		CommandID:         commandID,
		PlanID:            planID,
		Truck:             mv.Truck,
		DonorStationID:    mv.DonorStationID,
		ReceiverStationID: mv.ReceiverStationID,
		Quantity:          mv.Quantity,
		TravelMinutes:     mv.TravelMinutes,
		Timestamp:         time.Now().UnixMilli(),
	}
}

// Ack is sent back by a truck once it accepts an order.
type Ack struct {
	CommandID string `json:"command_id"`
}

// NopPublisher drops plans. It is used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) PublishPlan(context.Context, model.RebalancingPlan) ([]string, error) {
	return nil, nil
}

func (NopPublisher) WaitForAck(string, time.Duration) (bool, error) {
	return false, coremqtt.ErrUnknownCommand
}
