package postgres

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"docclassifier/internal/core/domain"
)

func newSampleRepoWithMock(t *testing.T) (*SampleRepository, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	return &SampleRepository{db: db}, mock, func() { _ = db.Close() }
}

func TestValidateReturnsDomainNotFoundWhenNoRowsAffected(t *testing.T) {
	repo, mock, done := newSampleRepoWithMock(t)
	defer done()

	mock.ExpectExec("UPDATE training_samples").
		WithArgs("missing", string(domain.SampleValidated)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Validate(context.Background(), "missing")
	if !domain.IsKind(err, domain.ErrSampleNotFound) {
		t.Fatalf("expected ErrSampleNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestGetValidatedSkipsEmptyText(t *testing.T) {
	repo, mock, done := newSampleRepoWithMock(t)
	defer done()

	mock.ExpectQuery("SELECT extracted_text, label").
		WithArgs(string(domain.SampleValidated)).
		WillReturnRows(sqlmock.NewRows([]string{"extracted_text", "label"}).
			AddRow("invoice total due", "Invoice").
			AddRow("skills and experience", "Resume"))

	corpus, err := repo.GetValidated(context.Background())
	if err != nil {
		t.Fatalf("GetValidated() error = %v", err)
	}
	if len(corpus) != 2 {
		t.Fatalf("expected 2 corpus entries, got %d", len(corpus))
	}
	if corpus[0].Label != "Invoice" || corpus[1].Text != "skills and experience" {
		t.Fatalf("unexpected corpus: %+v", corpus)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestGetValidatedEmptyCorpus(t *testing.T) {
	repo, mock, done := newSampleRepoWithMock(t)
	defer done()

	mock.ExpectQuery("SELECT extracted_text, label").
		WithArgs(string(domain.SampleValidated)).
		WillReturnRows(sqlmock.NewRows([]string{"extracted_text", "label"}))

	corpus, err := repo.GetValidated(context.Background())
	if err != nil {
		t.Fatalf("GetValidated() error = %v", err)
	}
	if len(corpus) != 0 {
		t.Fatalf("expected empty corpus, got %+v", corpus)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
