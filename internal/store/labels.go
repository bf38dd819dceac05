package store

import (
	"github.com/google/uuid"

	"github.com/postium/postium/internal/model"
)

// Labels returns a copy of an account's labels.
func (s *Store) Labels(accountID string) []model.Label {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Label, len(s.labels[accountID]))
	copy(out, s.labels[accountID])
	return out
}

// CreateLabel adds a label to an account and returns it.
func (s *Store) CreateLabel(accountID, name, color string) model.Label {
	s.mu.Lock()
	defer s.mu.Unlock()

	l := model.Label{
		ID:        uuid.New().String(),
		AccountID: accountID,
		Name:      name,
		Color:     color,
	}
	s.labels[accountID] = append(s.labels[accountID], l)
	s.log.Info("created label", "account_id", accountID, "name", name)
	return l
}

// UpdateLabel renames or recolors a label. Empty fields keep their
// current value.
func (s *Store) UpdateLabel(accountID, labelID, name, color string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.labels[accountID] {
		l := &s.labels[accountID][i]
		if l.ID != labelID {
			continue
		}
		if name != "" {
			l.Name = name
		}
		if color != "" {
			l.Color = color
		}
		return
	}
	s.log.Warn("update of unknown label", "label_id", labelID)
}

// DeleteLabel removes a label and strips it from every message that
// carries it.
func (s *Store) DeleteLabel(accountID, labelID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.labels[accountID]
	idx := -1
	for i := range list {
		if list[i].ID == labelID {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.log.Warn("delete of unknown label", "label_id", labelID)
		return
	}
	s.labels[accountID] = append(list[:idx], list[idx+1:]...)

	for _, id := range s.accountMsgs[accountID] {
		m := s.msgs[id]
		if m == nil {
			continue
		}
		m.LabelIDs = removeString(m.LabelIDs, labelID)
	}
	s.refreshVisibleLocked()
}

// AddLabelToMessages attaches a label to every listed message that does
// not already carry it. Unknown ids are skipped.
func (s *Store) AddLabelToMessages(ids []string, labelID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.log.Info("labeling messages", "count", len(ids), "label_id", labelID)

	touched := s.mutateMessagesLocked(ids, func(m *model.Message) {
		for _, l := range m.LabelIDs {
			if l == labelID {
				return
			}
		}
		m.LabelIDs = append(m.LabelIDs, labelID)
	})
	s.finishMutationLocked(touched)
}

// RemoveLabelFromMessages detaches a label from every listed message.
func (s *Store) RemoveLabelFromMessages(ids []string, labelID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.log.Info("unlabeling messages", "count", len(ids), "label_id", labelID)

	touched := s.mutateMessagesLocked(ids, func(m *model.Message) {
		m.LabelIDs = removeString(m.LabelIDs, labelID)
	})
	s.finishMutationLocked(touched)
}

func removeString(list []string, v string) []string {
	for i, s := range list {
		if s == v {
			return append(list[:i], list[i+1:]...)
		}
	}
	return list
}
