package backup

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/ecavus/wedding-rsvp/internal/domain"
	"github.com/ecavus/wedding-rsvp/pkg/logger"
)

// Source is the read-only view of the live tables the snapshotter needs.
type Source interface {
	ListGuests(ctx context.Context) ([]domain.Guest, error)
	ListRSVPs(ctx context.Context) ([]domain.RSVPResponse, error)
}

// Snapshot is the JSON backup file layout.
type Snapshot struct {
	Guests []domain.Guest        `json:"guests"`
	RSVPs  []domain.RSVPResponse `json:"rsvps"`
}

// Writer dumps both tables into timestamped JSON and spreadsheet files.
type Writer struct {
	dir string
}

func NewWriter(dir string) *Writer {
	return &Writer{dir: dir}
}

// Write reads both tables in full and produces one snapshot set. Filenames
// carry a timestamp so successive runs never overwrite each other.
func (w *Writer) Write(ctx context.Context, src Source) (jsonPath, xlsxPath string, err error) {
	guests, err := src.ListGuests(ctx)
	if err != nil {
		return "", "", fmt.Errorf("read guests: %w", err)
	}
	rsvps, err := src.ListRSVPs(ctx)
	if err != nil {
		return "", "", fmt.Errorf("read rsvps: %w", err)
	}

	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return "", "", fmt.Errorf("create backup dir: %w", err)
	}

	stamp := time.Now().Format("20060102_150405")
	jsonPath = filepath.Join(w.dir, fmt.Sprintf("backup_%s.json", stamp))
	xlsxPath = filepath.Join(w.dir, fmt.Sprintf("backup_%s.xlsx", stamp))

	if err := w.writeJSON(jsonPath, Snapshot{Guests: guests, RSVPs: rsvps}); err != nil {
		return "", "", err
	}
	if err := w.writeSpreadsheet(xlsxPath, guests, rsvps); err != nil {
		return "", "", err
	}

	logger.Info("Backup snapshot written",
		"guests", len(guests),
		"rsvps", len(rsvps),
		"json", jsonPath,
		"xlsx", xlsxPath,
	)
	return jsonPath, xlsxPath, nil
}

func (w *Writer) writeJSON(path string, snap Snapshot) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("create json backup: %w", err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(snap); err != nil {
		return fmt.Errorf("encode json backup: %w", err)
	}
	return nil
}

func (w *Writer) writeSpreadsheet(path string, guests []domain.Guest, rsvps []domain.RSVPResponse) error {
	f := excelize.NewFile()
	defer f.Close()

	const guestSheet = "Guests"
	if err := f.SetSheetName("Sheet1", guestSheet); err != nil {
		return err
	}
	header := []interface{}{"id", "full_name", "phone_number", "country_code", "created_at", "updated_at"}
	if err := f.SetSheetRow(guestSheet, "A1", &header); err != nil {
		return err
	}
	for i, g := range guests {
		row := []interface{}{
			g.ID, g.FullName, g.PhoneNumber, g.CountryCode,
			g.CreatedAt.Format(time.RFC3339), g.UpdatedAt.Format(time.RFC3339),
		}
		if err := f.SetSheetRow(guestSheet, fmt.Sprintf("A%d", i+2), &row); err != nil {
			return err
		}
	}

	const rsvpSheet = "RSVPs"
	if _, err := f.NewSheet(rsvpSheet); err != nil {
		return err
	}
	header = []interface{}{
		"id", "guest_id", "guest_relationship", "household_count", "food_allergies",
		"is_visiting_venue", "arrival_date", "additional_notes", "created_at", "updated_at",
	}
	if err := f.SetSheetRow(rsvpSheet, "A1", &header); err != nil {
		return err
	}
	for i, r := range rsvps {
		row := []interface{}{
			r.ID, r.GuestID, string(r.GuestRelationship), r.HouseholdCount, strOrEmpty(r.FoodAllergies),
			r.IsVisitingVenue, strOrEmpty(r.ArrivalDate), strOrEmpty(r.AdditionalNotes),
			r.CreatedAt.Format(time.RFC3339), r.UpdatedAt.Format(time.RFC3339),
		}
		if err := f.SetSheetRow(rsvpSheet, fmt.Sprintf("A%d", i+2), &row); err != nil {
			return err
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save spreadsheet backup: %w", err)
	}
	return nil
}

func strOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
