package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/iwvelando/loan-tracker/pkg/constants"
	"github.com/iwvelando/loan-tracker/pkg/loans"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// PortfolioRepository loads and saves the loan portfolio under a fixed key.
type PortfolioRepository struct {
	store  Store
	codec  Codec
	key    string
	logger *zap.Logger
}

// NewPortfolioRepository creates a repository over store using codec.
func NewPortfolioRepository(store Store, codec Codec, logger *zap.Logger) *PortfolioRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	if codec == nil {
		codec = JSONCodec{}
	}
	return &PortfolioRepository{store: store, codec: codec, key: constants.StorageKey, logger: logger}
}

// Load returns the stored portfolio. A missing key is an empty portfolio.
// When reading or decoding fails the empty portfolio is returned together
// with the error. Stored data is not validated.
func (r *PortfolioRepository) Load(ctx context.Context) ([]loans.Loan, error) {
	empty := []loans.Loan{}

	data, err := r.store.Get(ctx, r.key)
	if errors.Is(err, ErrNotFound) {
		return empty, nil
	}
	if err != nil {
		r.logger.Error("failed to read portfolio",
			zap.String("op", "storage.Load"),
			zap.Error(err),
		)
		return empty, fmt.Errorf("loading portfolio: %w", err)
	}

	var portfolio []loans.Loan
	if err := r.codec.Unmarshal(data, &portfolio); err != nil {
		r.logger.Error("failed to decode portfolio",
			zap.String("op", "storage.Load"),
			zap.String("codec", r.codec.Name()),
			zap.Error(err),
		)
		return empty, fmt.Errorf("decoding portfolio: %w", err)
	}
	if portfolio == nil {
		portfolio = empty
	}
	return portfolio, nil
}

// Save replaces the stored portfolio.
func (r *PortfolioRepository) Save(ctx context.Context, portfolio []loans.Loan) error {
	if portfolio == nil {
		portfolio = []loans.Loan{}
	}
	data, err := r.codec.Marshal(portfolio)
	if err != nil {
		return fmt.Errorf("encoding portfolio: %w", err)
	}
	if err := r.store.Set(ctx, r.key, data); err != nil {
		return fmt.Errorf("saving portfolio: %w", err)
	}

	r.logger.Debug(fmt.Sprintf("saved portfolio of %d loans", len(portfolio)),
		zap.String("op", "storage.Save"),
		zap.Int("bytes", len(data)),
	)
	return nil
}

// Clear removes the stored portfolio.
func (r *PortfolioRepository) Clear(ctx context.Context) error {
	if err := r.store.Delete(ctx, r.key); err != nil {
		return fmt.Errorf("clearing portfolio: %w", err)
	}
	return nil
}

// Export writes the stored portfolio to w as json or yaml.
func (r *PortfolioRepository) Export(ctx context.Context, w io.Writer, format string) error {
	portfolio, err := r.Load(ctx)
	if err != nil {
		return err
	}

	switch format {
	case constants.ExportFormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		err = enc.Encode(portfolio)
	case constants.ExportFormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		err = enc.Encode(portfolio)
		if err == nil {
			err = enc.Close()
		}
	default:
		return fmt.Errorf("unsupported export format %s", format)
	}
	if err != nil {
		return fmt.Errorf("exporting portfolio: %w", err)
	}
	return nil
}

// Import replaces the stored portfolio with the json or yaml document read
// from r and returns it.
func (r *PortfolioRepository) Import(ctx context.Context, reader io.Reader, format string) ([]loans.Loan, error) {
	var portfolio []loans.Loan

	var err error
	switch format {
	case constants.ExportFormatJSON:
		err = json.NewDecoder(reader).Decode(&portfolio)
	case constants.ExportFormatYAML:
		err = yaml.NewDecoder(reader).Decode(&portfolio)
	default:
		return nil, fmt.Errorf("unsupported import format %s", format)
	}
	if err != nil {
		return nil, fmt.Errorf("importing portfolio: %w", err)
	}
	if portfolio == nil {
		portfolio = []loans.Loan{}
	}

	if err := r.Save(ctx, portfolio); err != nil {
		return nil, err
	}

	r.logger.Info(fmt.Sprintf("imported %d loans", len(portfolio)),
		zap.String("op", "storage.Import"),
		zap.String("format", format),
	)
	return portfolio, nil
}
