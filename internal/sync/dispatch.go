// ABOUTME: Per-item dispatch: temp ids resolved at processing time, then
// ABOUTME: the network call implied by the item's type.
package sync

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/harperreed/lift/internal/api"
	"github.com/harperreed/lift/internal/models"
)

// dispatch resolves the item's temp-id references against the current map
// and issues its network call. Resolution happens here, not at enqueue
// time, because the referenced entity's own item may have synced first.
func (m *Manager) dispatch(ctx context.Context, item *models.PendingSyncItem) error {
	switch item.Type {
	case models.SyncStartWorkout:
		var p models.StartWorkoutPayload
		if err := json.Unmarshal(item.Payload, &p); err != nil {
			return fmt.Errorf("decode %s payload: %w", item.Type, err)
		}
		resp, err := m.client.StartSession(ctx, api.StartSessionRequest{
			Name:      p.Name,
			StartTime: p.StartTime,
		}, item.IdempotencyKey)
		if err != nil {
			return err
		}
		return m.state.MapTempID(item.TempID, resp.ID)

	case models.SyncLogExercise:
		var p models.LogExercisePayload
		if err := json.Unmarshal(item.Payload, &p); err != nil {
			return fmt.Errorf("decode %s payload: %w", item.Type, err)
		}
		sessionID := m.state.GetRealID(p.SessionID)
		resp, err := m.client.CreateExerciseLog(ctx, sessionID, api.CreateLogRequest{
			ExerciseID: p.ExerciseID,
			Name:       p.Name,
		}, item.IdempotencyKey)
		if err != nil {
			return err
		}
		return m.state.MapTempID(item.TempID, resp.ID)

	case models.SyncLogSet:
		var p models.LogSetPayload
		if err := json.Unmarshal(item.Payload, &p); err != nil {
			return fmt.Errorf("decode %s payload: %w", item.Type, err)
		}
		sessionID := m.state.GetRealID(p.SessionID)
		logID := m.state.GetRealID(p.LogID)
		resp, err := m.client.AppendSet(ctx, sessionID, logID, api.AppendSetRequest{
			SetNumber: p.SetNumber,
			Weight:    p.Weight,
			Reps:      p.Reps,
			Completed: p.Completed,
		}, item.IdempotencyKey)
		if err != nil {
			return err
		}
		if resp.IsPR {
			// Server-side PR detection; reflect it in the mirror if the
			// session is still active.
			_ = m.state.MarkSetPR(p.ExerciseID, p.SetNumber)
		}
		return nil

	case models.SyncPauseWorkout, models.SyncResumeWorkout:
		var p models.PausePayload
		if err := json.Unmarshal(item.Payload, &p); err != nil {
			return fmt.Errorf("decode %s payload: %w", item.Type, err)
		}
		sessionID := m.state.GetRealID(p.SessionID)
		req := api.PauseRequest{ElapsedSec: p.ElapsedSec}
		var err error
		if item.Type == models.SyncPauseWorkout {
			_, err = m.client.PauseSession(ctx, sessionID, req, item.IdempotencyKey)
		} else {
			_, err = m.client.ResumeSession(ctx, sessionID, req, item.IdempotencyKey)
		}
		return err

	case models.SyncCompleteWorkout:
		var p models.CompletePayload
		if err := json.Unmarshal(item.Payload, &p); err != nil {
			return fmt.Errorf("decode %s payload: %w", item.Type, err)
		}
		sessionID := m.state.GetRealID(p.SessionID)
		return m.client.CompleteSession(ctx, sessionID, api.CompleteRequest{
			CompletedAt: p.CompletedAt,
			DurationSec: p.DurationSec,
			Notes:       p.Notes,
		}, item.IdempotencyKey)

	case models.SyncCancelWorkout:
		var p models.CancelPayload
		if err := json.Unmarshal(item.Payload, &p); err != nil {
			return fmt.Errorf("decode %s payload: %w", item.Type, err)
		}
		sessionID := m.state.GetRealID(p.SessionID)
		return m.client.CancelSession(ctx, sessionID, item.IdempotencyKey)

	default:
		return fmt.Errorf("unknown sync type %q", item.Type)
	}
}
