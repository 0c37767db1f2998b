package domain

import (
	"errors"
	"testing"
	"time"
)

var testNow = time.Date(2024, 3, 10, 9, 30, 0, 0, time.Local)

func TestNewReport(t *testing.T) {
	equipmentID := int64(7)
	report, err := NewReport(&equipmentID, ReportCategoryHardware, "  Screen flickers  ", PriorityHigh, 3, testNow)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if report.Status != ReportStatusOpen {
		t.Errorf("Expected status %s, got %s", ReportStatusOpen, report.Status)
	}
	if report.Description != "Screen flickers" {
		t.Errorf("Expected trimmed description, got %q", report.Description)
	}
	if report.ReportedBy != 3 {
		t.Errorf("Expected reporter 3, got %d", report.ReportedBy)
	}
	if !report.CreatedAt.Equal(testNow) {
		t.Errorf("Expected CreatedAt %v, got %v", testNow, report.CreatedAt)
	}
	if report.Resolution != nil {
		t.Errorf("Expected no resolution, got %v", *report.Resolution)
	}
}

func TestNewReport_Validation(t *testing.T) {
	tests := []struct {
		name        string
		category    ReportCategory
		description string
		priority    Priority
		field       string
	}{
		{"empty description", ReportCategoryOther, "   ", PriorityLow, "description"},
		{"unknown category", ReportCategory("PLUMBING"), "leak", PriorityLow, "category"},
		{"unknown priority", ReportCategoryOther, "leak", Priority("URGENT"), "priority"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewReport(nil, tt.category, tt.description, tt.priority, 1, testNow)
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("Expected ValidationError, got %v", err)
			}
			if ve.Field != tt.field {
				t.Errorf("Expected field %s, got %s", tt.field, ve.Field)
			}
		})
	}
}

func TestNewReport_DefaultsPriority(t *testing.T) {
	report, err := NewReport(nil, ReportCategoryNetwork, "switch down", "", 1, testNow)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if report.Priority != PriorityMedium {
		t.Errorf("Expected priority %s, got %s", PriorityMedium, report.Priority)
	}
}

func TestReport_Lifecycle(t *testing.T) {
	report, _ := NewReport(nil, ReportCategorySoftware, "license expired", PriorityMedium, 1, testNow)

	if err := report.MarkInProgress(); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if report.Status != ReportStatusInProgress {
		t.Errorf("Expected status %s, got %s", ReportStatusInProgress, report.Status)
	}

	if err := report.Resolve("renewed"); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if report.Status != ReportStatusResolved {
		t.Errorf("Expected status %s, got %s", ReportStatusResolved, report.Status)
	}
	if report.Resolution == nil || *report.Resolution != "renewed" {
		t.Errorf("Expected resolution 'renewed', got %v", report.Resolution)
	}
}

func TestReport_ResolveDirectlyFromOpen(t *testing.T) {
	report, _ := NewReport(nil, ReportCategorySoftware, "license expired", PriorityMedium, 1, testNow)

	if err := report.Resolve("renewed"); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if report.Status != ReportStatusResolved {
		t.Errorf("Expected status %s, got %s", ReportStatusResolved, report.Status)
	}
}

func TestReport_InvalidTransitions(t *testing.T) {
	report, _ := NewReport(nil, ReportCategorySoftware, "license expired", PriorityMedium, 1, testNow)
	_ = report.Resolve("renewed")

	var ite *InvalidTransitionError
	if err := report.Resolve("again"); !errors.As(err, &ite) {
		t.Errorf("Expected InvalidTransitionError resolving twice, got %v", err)
	}
	if err := report.MarkInProgress(); !errors.As(err, &ite) {
		t.Errorf("Expected InvalidTransitionError reopening, got %v", err)
	}
	if ite.From != string(ReportStatusResolved) || ite.To != string(ReportStatusInProgress) {
		t.Errorf("Unexpected transition details: %+v", ite)
	}

	inProgress, _ := NewReport(nil, ReportCategoryOther, "noise", PriorityLow, 1, testNow)
	_ = inProgress.MarkInProgress()
	if err := inProgress.MarkInProgress(); !errors.As(err, &ite) {
		t.Errorf("Expected InvalidTransitionError from IN_PROGRESS, got %v", err)
	}
}

func TestReport_ResolveRequiresText(t *testing.T) {
	report, _ := NewReport(nil, ReportCategorySoftware, "license expired", PriorityMedium, 1, testNow)

	var ve *ValidationError
	if err := report.Resolve("  "); !errors.As(err, &ve) {
		t.Fatalf("Expected ValidationError, got %v", err)
	}
	if report.Status != ReportStatusOpen {
		t.Errorf("Expected status unchanged, got %s", report.Status)
	}
}
