package notifier

import (
	"errors"

	"github.com/jobalert/jobalert/internal/model"
)

var _ model.Notifier = Multi(nil)

// Multi fans each call out to every notifier. All of them are tried; the
// failures are joined.
type Multi []model.Notifier

func (m Multi) SendSummary(text string) error {
	var errs []error
	for _, n := range m {
		if err := n.SendSummary(text); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m Multi) SendDigest(entries []model.ScoredCandidate) error {
	var errs []error
	for _, n := range m {
		if err := n.SendDigest(entries); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
