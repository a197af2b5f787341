package main

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/sells-group/selda-cli/internal/model"
	"github.com/sells-group/selda-cli/internal/store"
)

type mockAnalyzer struct{ mock.Mock }

func (m *mockAnalyzer) Run(ctx context.Context, rawURL string) (*model.Report, error) {
	args := m.Called(ctx, rawURL)
	if r := args.Get(0); r != nil {
		return r.(*model.Report), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockStore struct{ mock.Mock }

func (m *mockStore) CreateRun(ctx context.Context, url string) (*model.Run, error) {
	args := m.Called(ctx, url)
	if r := args.Get(0); r != nil {
		return r.(*model.Run), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockStore) UpdateRunStatus(ctx context.Context, id string, status model.RunStatus) error {
	return m.Called(ctx, id, status).Error(0)
}

func (m *mockStore) CompleteRun(ctx context.Context, id string, report *model.Report) error {
	return m.Called(ctx, id, report).Error(0)
}

func (m *mockStore) FailRun(ctx context.Context, id string, err error) error {
	return m.Called(ctx, id, err).Error(0)
}

func (m *mockStore) GetRun(ctx context.Context, id string) (*model.Run, error) {
	args := m.Called(ctx, id)
	if r := args.Get(0); r != nil {
		return r.(*model.Run), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockStore) ListRuns(ctx context.Context, filter store.RunFilter) ([]model.Run, error) {
	args := m.Called(ctx, filter)
	if r := args.Get(0); r != nil {
		return r.([]model.Run), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockStore) Migrate(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *mockStore) Close() error {
	return m.Called().Error(0)
}

// sampleReport returns a small normalized report.
func sampleReport() *model.Report {
	r := &model.Report{
		Company: model.CompanyProfile{Name: "Acme Corp", Website: "https://acme.com"},
		Metadata: model.Metadata{
			model.MetaSourceURL: "https://acme.com",
		},
	}
	r.Normalize()
	footer := model.DefaultFooter()
	r.Footer = &footer
	return r
}
