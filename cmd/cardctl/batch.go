package main

import (
	"context"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/light-bringer/cardsync-service/internal/app/card/usecases/register_change"
)

// Change is one entry of a batch file.
type Change struct {
	CardType string            `yaml:"cardType"`
	ID       int64             `yaml:"id"`
	Key      string            `yaml:"key,omitempty"`
	Label    string            `yaml:"label,omitempty"`
	Fields   map[string]string `yaml:"fields"`
}

// Batch is the document read by "cardctl commit -f".
type Batch struct {
	Changes []Change `yaml:"changes"`
}

// loadBatch decodes a batch document. Unknown keys are rejected so typos in
// field groups surface before anything is sent.
func loadBatch(r io.Reader) (*Batch, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var b Batch
	if err := dec.Decode(&b); err != nil {
		if err == io.EOF {
			return &b, nil
		}
		return nil, fmt.Errorf("failed to parse batch: %w", err)
	}
	return &b, nil
}

// registerBatch validates and registers every change in file order. The
// first invalid entry aborts with its position.
func registerBatch(ctx context.Context, uc *register_change.Interactor, b *Batch) error {
	for i, c := range b.Changes {
		_, err := uc.Execute(ctx, &register_change.Request{
			EntityKey: c.Key,
			CardType:  c.CardType,
			EntityID:  c.ID,
			Fields:    c.Fields,
			Label:     c.Label,
		})
		if err != nil {
			return fmt.Errorf("change #%d (%s %d): %w", i+1, c.CardType, c.ID, err)
		}
	}
	return nil
}
