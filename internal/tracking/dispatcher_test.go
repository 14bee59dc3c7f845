package tracking

import (
	"context"
	"sync"
	"testing"
	"time"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/domain/model/kernel"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingHandler captures the order reports arrive in, per driver.
type recordingHandler struct {
	mu      sync.Mutex
	byOrder map[string][]time.Time
	gate    chan struct{}
}

func (h *recordingHandler) Handle(_ context.Context, cmd commands.UpdateDriverLocationCommand) error {
	if h.gate != nil {
		<-h.gate
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.byOrder == nil {
		h.byOrder = make(map[string][]time.Time)
	}
	key := cmd.DriverID().String()
	h.byOrder[key] = append(h.byOrder[key], cmd.ReportedAt())
	return nil
}

func report(t *testing.T, driverID kernel.UUID, at time.Time) commands.UpdateDriverLocationCommand {
	t.Helper()
	cmd, err := commands.NewUpdateDriverLocationCommand(driverID, -33.87, 151.21, at)
	require.NoError(t, err)
	return cmd
}

func TestDispatcher_PreservesPerDriverOrder(t *testing.T) {
	handler := &recordingHandler{}
	dispatcher := NewDispatcher(handler, 32, nil)

	first := kernel.NewUUID()
	second := kernel.NewUUID()
	base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	for i := range 10 {
		at := base.Add(time.Duration(i) * time.Second)
		require.True(t, dispatcher.Submit(report(t, first, at)))
		require.True(t, dispatcher.Submit(report(t, second, at)))
	}

	dispatcher.Close()

	for _, driverID := range []kernel.UUID{first, second} {
		recorded := handler.byOrder[driverID.String()]
		require.Len(t, recorded, 10)
		for i := 1; i < len(recorded); i++ {
			assert.True(t, recorded[i].After(recorded[i-1]),
				"reports must be processed in submission order")
		}
	}
}

func TestDispatcher_DropsWhenQueueFull(t *testing.T) {
	handler := &recordingHandler{gate: make(chan struct{})}
	dispatcher := NewDispatcher(handler, 1, nil)

	driverID := kernel.NewUUID()
	base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	// First report is picked up by the drain goroutine and blocks on the
	// gate; the second fills the buffer; anything beyond that is dropped.
	require.True(t, dispatcher.Submit(report(t, driverID, base)))

	accepted := 1
	for i := 1; i <= 10; i++ {
		if dispatcher.Submit(report(t, driverID, base.Add(time.Duration(i)*time.Second))) {
			accepted++
		}
	}
	assert.Less(t, accepted, 11)

	close(handler.gate)
	dispatcher.Close()

	assert.Len(t, handler.byOrder[driverID.String()], accepted)
}

func TestDispatcher_SubmitAfterCloseIsRejected(t *testing.T) {
	dispatcher := NewDispatcher(&recordingHandler{}, 4, nil)
	dispatcher.Close()

	driverID := kernel.NewUUID()
	at := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	assert.False(t, dispatcher.Submit(report(t, driverID, at)))
}

func TestDispatcher_RejectsUnconstructedCommand(t *testing.T) {
	dispatcher := NewDispatcher(&recordingHandler{}, 4, nil)
	defer dispatcher.Close()

	assert.False(t, dispatcher.Submit(commands.UpdateDriverLocationCommand{}))
}
