package worker

import (
	"context"
	"log"
	"time"

	"github.com/SaumyaSingh04/Chow-Back/internal/service"
)

// ShipmentRetryWorker periodically re-scans confirmed-but-unshipped courier
// orders and retries shipment creation. Orders at the attempt cap are left
// for manual intervention.
type ShipmentRetryWorker struct {
	shipments service.ShipmentService
	interval  time.Duration
}

func NewShipmentRetryWorker(shipments service.ShipmentService, interval time.Duration) *ShipmentRetryWorker {
	return &ShipmentRetryWorker{
		shipments: shipments,
		interval:  interval,
	}
}

func (w *ShipmentRetryWorker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	log.Println("shipment retry worker started")

	for {
		select {
		case <-ctx.Done():
			log.Println("shipment retry worker stopped")
			return
		case <-ticker.C:
			result, err := w.shipments.RetryFailed(ctx)
			if err != nil {
				log.Printf("shipment retry sweep: %v", err)
				continue
			}
			if result.Total > 0 {
				log.Printf("shipment retry sweep: %d pending, %d created, %d failed",
					result.Total, result.Success, result.Failed)
			}
		}
	}
}
