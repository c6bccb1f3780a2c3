package model_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/slok/progtree/internal/model"
)

func TestRequirementStatus(t *testing.T) {
	tests := map[string]struct {
		met       bool
		optional  bool
		expStatus model.CheckStatus
	}{
		"Met required requirements should be ok.":       {met: true, optional: false, expStatus: model.CheckStatusOK},
		"Met optional requirements should be ok.":       {met: true, optional: true, expStatus: model.CheckStatusOK},
		"Unmet optional requirements should warn.":      {met: false, optional: true, expStatus: model.CheckStatusWarning},
		"Unmet required requirements should be errors.": {met: false, optional: false, expStatus: model.CheckStatusError},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, test.expStatus, model.RequirementStatus(test.met, test.optional))
		})
	}
}

func TestSummarizeChecks(t *testing.T) {
	tests := map[string]struct {
		results    []model.CheckResult
		expSummary model.CheckSummary
		expFailed  bool
	}{
		"No results should not fail.": {
			results:    nil,
			expSummary: model.CheckSummary{},
		},

		"Only warnings should not fail.": {
			results: []model.CheckResult{
				{ID: "data_dir", Status: model.CheckStatusOK},
				{ID: "terminal", Status: model.CheckStatusWarning},
			},
			expSummary: model.CheckSummary{OK: 1, Warnings: 1},
		},

		"Errors should fail.": {
			results: []model.CheckResult{
				{ID: "data_dir", Status: model.CheckStatusOK},
				{ID: "database", Status: model.CheckStatusError},
				{ID: "plan", Status: model.CheckStatusError},
				{ID: "terminal", Status: model.CheckStatusWarning},
			},
			expSummary: model.CheckSummary{OK: 1, Warnings: 1, Errors: 2},
			expFailed:  true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			s := model.SummarizeChecks(test.results)
			assert.Equal(t, test.expSummary, s)
			assert.Equal(t, test.expFailed, s.Failed())
		})
	}
}
