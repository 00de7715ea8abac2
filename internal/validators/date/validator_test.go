// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package date

import "testing"

func TestValidate_ISO(t *testing.T) {
	norm, ok := Validate("2024-10-17")
	if !ok {
		t.Fatal("ISO date should validate")
	}
	if norm != "2024-10-17" {
		t.Errorf("expected 2024-10-17, got %q", norm)
	}
}

func TestValidate_USFormat(t *testing.T) {
	norm, ok := Validate("10/17/2024")
	if !ok {
		t.Fatal("US date should validate")
	}
	if norm != "2024-10-17" {
		t.Errorf("expected 2024-10-17, got %q", norm)
	}
}

func TestValidate_ConfusionRepair(t *testing.T) {
	norm, ok := Validate("O7-1O-25")
	if !ok {
		t.Fatal("confusion-repairable date should validate")
	}
	if norm != "2025-07-10" {
		t.Errorf("expected 2025-07-10, got %q", norm)
	}
}

func TestValidate_SubstringHint(t *testing.T) {
	norm, ok := Validate("Delivered 10/17/2024 by driver")
	if !ok {
		t.Fatal("embedded date should validate via hint")
	}
	if norm != "2024-10-17" {
		t.Errorf("expected 2024-10-17, got %q", norm)
	}
}

func TestValidate_MonthName(t *testing.T) {
	norm, ok := Validate("October 17, 2024")
	if !ok {
		t.Fatal("month-name date should validate")
	}
	if norm != "2024-10-17" {
		t.Errorf("expected 2024-10-17, got %q", norm)
	}
}

func TestValidate_Failure(t *testing.T) {
	orig := "sometime last week"
	norm, ok := Validate(orig)
	if ok {
		t.Error("vague text should not validate")
	}
	if norm != orig {
		t.Errorf("failed validation must return the original value, got %q", norm)
	}
}
