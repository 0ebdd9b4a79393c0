package courses

import "testing"

func TestParseGrade(t *testing.T) {
	cases := []struct {
		in      string
		want    Grade
		wantErr bool
	}{
		{"A+", GradeAPlus, false},
		{"a+", GradeAPlus, false},
		{" b ", GradeB, false},
		{"P", GradeP, false},
		{"E", "", true},
		{"", "", true},
	}
	for _, tc := range cases {
		got, err := ParseGrade(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("ParseGrade(%q): expected error", tc.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseGrade(%q): %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseGrade(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestGradePoints(t *testing.T) {
	if got := GradeAPlus.Points(); got != 4.5 {
		t.Errorf("A+ points = %f, want 4.5", got)
	}
	if got := GradeB.Points(); got != 3.0 {
		t.Errorf("B points = %f, want 3.0", got)
	}
	if got := GradeC.Points(); got != 0 {
		t.Errorf("C points = %f, want 0", got)
	}
	if got := GradeP.Points(); got != 0 {
		t.Errorf("P points = %f, want 0", got)
	}
}

func TestCategoryForTarget(t *testing.T) {
	for _, label := range []string{"교양", "General", "general", "GENERAL"} {
		if got := CategoryForTarget(label); got != CategoryGeneral {
			t.Errorf("CategoryForTarget(%q) = %q, want General", label, got)
		}
	}
	for _, label := range []string{"전공", "Major", "", "anything"} {
		if got := CategoryForTarget(label); got != CategoryMajor {
			t.Errorf("CategoryForTarget(%q) = %q, want Major", label, got)
		}
	}
}

func TestCategoryLabel(t *testing.T) {
	if CategoryGeneral.Label() != "교양" {
		t.Errorf("General label = %q", CategoryGeneral.Label())
	}
	if CategoryMajor.Label() != "전공" {
		t.Errorf("Major label = %q", CategoryMajor.Label())
	}
}

func TestDepartmentFromCode(t *testing.T) {
	got, err := DepartmentFromCode("cs101")
	if err != nil {
		t.Fatalf("DepartmentFromCode: %v", err)
	}
	if got != "CS" {
		t.Fatalf("DepartmentFromCode(cs101) = %q, want CS", got)
	}

	if _, err := DepartmentFromCode("101"); err == nil {
		t.Fatal("expected error for code without letters")
	}
}

func TestGradeWeightOrdering(t *testing.T) {
	ordered := []Grade{GradeAPlus, GradeA, GradeBPlus, GradeB, GradeCPlus, GradeC, GradeDPlus, GradeD, GradeF}
	for i := 1; i < len(ordered); i++ {
		if ordered[i-1].Weight() <= ordered[i].Weight() {
			t.Errorf("weight of %s should exceed %s", ordered[i-1], ordered[i])
		}
	}
	if !GradeAPlus.IsHigh() || !GradeA.IsHigh() || GradeBPlus.IsHigh() {
		t.Error("IsHigh should cover exactly A+ and A")
	}
}
