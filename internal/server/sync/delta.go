package sync

import (
	"context"
	"time"
)

// download fills the response's server_data with every record of the
// caller's that changed strictly after the watermark. Runs against the
// committed state, so it also returns what this very call just wrote.
func (s *Service) download(ctx context.Context, userID string, since time.Time, resp *Response) error {
	r := s.reposFor(s.db)

	tripRows, err := r.trips.SelectUpdatedSince(ctx, userID, since)
	if err != nil {
		return err
	}
	for _, t := range tripRows {
		resp.ServerData.Trips = append(resp.ServerData.Trips, newTripPayload(t))
	}
	resp.TripsDownloaded = len(resp.ServerData.Trips)

	dayRows, err := r.days.SelectUpdatedSince(ctx, userID, since)
	if err != nil {
		return err
	}
	for _, d := range dayRows {
		resp.ServerData.Days = append(resp.ServerData.Days, newDayPayload(d))
	}
	resp.DaysDownloaded = len(resp.ServerData.Days)

	activityRows, err := r.activities.SelectUpdatedSince(ctx, userID, since)
	if err != nil {
		return err
	}
	for _, a := range activityRows {
		resp.ServerData.Activities = append(resp.ServerData.Activities, newActivityPayload(a))
	}
	resp.ActivitiesDownloaded = len(resp.ServerData.Activities)

	itemRows, err := r.budgetItems.SelectUpdatedSince(ctx, userID, since)
	if err != nil {
		return err
	}
	for _, b := range itemRows {
		resp.ServerData.BudgetItems = append(resp.ServerData.BudgetItems, newBudgetItemPayload(b))
	}
	resp.BudgetItemsDownloaded = len(resp.ServerData.BudgetItems)

	noteRows, err := r.notes.SelectUpdatedSince(ctx, userID, since)
	if err != nil {
		return err
	}
	for _, n := range noteRows {
		resp.ServerData.Notes = append(resp.ServerData.Notes, newNotePayload(n))
	}
	resp.NotesDownloaded = len(resp.ServerData.Notes)

	return nil
}
