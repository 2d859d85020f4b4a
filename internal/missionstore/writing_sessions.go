package missionstore

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"maestro/internal/domain"
	"maestro/internal/merrors"
)

// SaveWritingSession upserts a writing session row plus its drafts and
// references, replacing the child rows wholesale (writing sessions are
// small and infrequently written compared to missions).
func (s *Store) SaveWritingSession(ws *domain.WritingSession) error {
	settings, err := marshalAny(ws.Settings)
	if err != nil {
		return fmt.Errorf("marshal writing session settings: %w", err)
	}
	stats, err := marshalAny(ws.Stats)
	if err != nil {
		return fmt.Errorf("marshal writing session stats: %w", err)
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		row := writingSessionRow{
			ID:              ws.ID,
			ChatID:          ws.ChatID,
			DocumentGroupID: ws.DocumentGroupID,
			UseWebSearch:    ws.UseWebSearch,
			CurrentDraftID:  ws.CurrentDraftID,
			SettingsJSON:    settings,
			StatsJSON:       stats,
		}
		if err := tx.Save(&row).Error; err != nil {
			return err
		}

		if err := tx.Where("writing_session_id = ?", ws.ID).Delete(&draftRow{}).Error; err != nil {
			return err
		}
		for _, d := range ws.Drafts {
			if err := tx.Create(&draftRow{
				WritingSessionID: ws.ID,
				Title:            d.Title,
				Content:          d.Content,
				Version:          d.Version,
				IsCurrent:        d.IsCurrent,
			}).Error; err != nil {
				return err
			}
		}

		if err := tx.Where("writing_session_id = ?", ws.ID).Delete(&referenceRow{}).Error; err != nil {
			return err
		}
		for _, r := range ws.References {
			if err := tx.Create(&referenceRow{
				WritingSessionID: ws.ID,
				DraftID:          r.DraftID,
				RefID:            r.RefID,
				Kind:             string(r.Kind),
				CitationText:     r.CitationText,
				Context:          r.Context,
			}).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// LoadWritingSession reconstructs a writing session with its drafts and
// references.
func (s *Store) LoadWritingSession(id string) (*domain.WritingSession, error) {
	var row writingSessionRow
	err := s.db.First(&row, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, merrors.New(merrors.StorageUnavailable, fmt.Sprintf("writing session %s not found", id))
	}
	if err != nil {
		return nil, merrors.Wrap(merrors.StorageUnavailable, "load writing session", err)
	}

	ws := &domain.WritingSession{
		ID:              row.ID,
		ChatID:          row.ChatID,
		DocumentGroupID: row.DocumentGroupID,
		UseWebSearch:    row.UseWebSearch,
		CurrentDraftID:  row.CurrentDraftID,
	}
	_ = unmarshalInto(row.SettingsJSON, &ws.Settings)
	_ = unmarshalInto(row.StatsJSON, &ws.Stats)

	var drafts []draftRow
	if err := s.db.Where("writing_session_id = ?", id).Order("version asc").Find(&drafts).Error; err != nil {
		return nil, merrors.Wrap(merrors.StorageUnavailable, "load drafts", err)
	}
	for _, d := range drafts {
		ws.Drafts = append(ws.Drafts, domain.Draft{
			Title:     d.Title,
			Content:   d.Content,
			Version:   d.Version,
			IsCurrent: d.IsCurrent,
		})
	}

	var refs []referenceRow
	if err := s.db.Where("writing_session_id = ?", id).Find(&refs).Error; err != nil {
		return nil, merrors.Wrap(merrors.StorageUnavailable, "load references", err)
	}
	for _, r := range refs {
		ws.References = append(ws.References, domain.Reference{
			DraftID:      r.DraftID,
			RefID:        r.RefID,
			Kind:         domain.ReferenceKind(r.Kind),
			CitationText: r.CitationText,
			Context:      r.Context,
		})
	}

	return ws, nil
}

// ClearWritingSessionStats zeros a writing session's stats counters, the
// Go counterpart of Stats.Clear used by the "clear writing session
// stats" operation in spec §4.7.
func (s *Store) ClearWritingSessionStats(id string) error {
	ws, err := s.LoadWritingSession(id)
	if err != nil {
		return err
	}
	ws.Stats.Clear()
	return s.SaveWritingSession(ws)
}
