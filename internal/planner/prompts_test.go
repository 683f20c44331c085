package planner

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestPromptManager_Preamble(t *testing.T) {
	dir := t.TempDir()

	files := map[string]string{
		"identity.md":     "Identity Content",
		"soul.md":         "Soul Content",
		"capabilities.md": "Capabilities Content",
		"user.md":         "User Content",
		"extra.md":        "Extra Content",
		"planner.md":      "Planner Template {{.Goal}}",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}

	pm := NewPromptManager(dir)
	prompt, err := pm.Preamble()
	if err != nil {
		t.Fatal(err)
	}

	for _, part := range []string{"Identity Content", "Soul Content", "Capabilities Content", "User Content", "Extra Content"} {
		if !strings.Contains(prompt, part) {
			t.Errorf("Preamble missing expected part: %s", part)
		}
	}
	if strings.Contains(prompt, "Planner Template") {
		t.Error("template overrides must not be part of the preamble")
	}

	if strings.Index(prompt, "Identity Content") >= strings.Index(prompt, "Soul Content") {
		t.Error("Identity should be before Soul")
	}
	if strings.Index(prompt, "Capabilities Content") >= strings.Index(prompt, "User Content") {
		t.Error("Capabilities should be before User")
	}
	if strings.Index(prompt, "User Content") >= strings.Index(prompt, "Extra Content") {
		t.Error("ordered files should come before the rest")
	}
}

func TestPromptManager_Override(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "replanner.md"), []byte("Goal={{.Goal}} Reflection={{.Reflection}}"), 0644); err != nil {
		t.Fatal(err)
	}

	pm := NewPromptManager(dir)
	out, err := pm.Render(ReplannerTemplate, PromptData{Goal: "g", Reflection: "r"})
	if err != nil {
		t.Fatal(err)
	}
	if out != "Goal=g Reflection=r" {
		t.Errorf("unexpected render: %q", out)
	}

	out, err = pm.Render(PlannerTemplate, PromptData{Goal: "ship it"})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "ship it") || !strings.Contains(out, "(empty)") {
		t.Errorf("default planner template not used: %q", out)
	}
}

func TestPromptManager_MissingDirectory(t *testing.T) {
	pm := NewPromptManager(filepath.Join(t.TempDir(), "nope"))
	preamble, err := pm.Preamble()
	if err != nil || preamble != "" {
		t.Fatalf("expected empty preamble, got %q, %v", preamble, err)
	}
	if _, err := pm.Template("unknown"); err == nil {
		t.Error("expected an error for an unknown template")
	}
}
