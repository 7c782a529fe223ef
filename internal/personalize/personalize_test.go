package personalize

import (
	"strings"
	"testing"

	"github.com/kenta/hondana/internal/model"
)

func strPtr(s string) *string { return &s }

// 初心者プロファイルで専門用語に注釈が付くことを検証
func TestPersonalize_BeginnerAnnotatesJargon(t *testing.T) {
	p := New()
	profile := &model.Profile{
		SoftwareBackground: strPtr("beginner developer"),
	}

	result := p.Personalize("This concept is important", profile)

	want := "This concept (key term, explained for beginners) is important"
	if result.Content != want {
		t.Errorf("content = %q, want %q", result.Content, want)
	}
	if len(result.AppliedRules) != 1 || result.AppliedRules[0] != RuleBeginnerJargon {
		t.Errorf("applied rules = %v, want [%s]", result.AppliedRules, RuleBeginnerJargon)
	}
}

// プロファイルなしでコンテンツが変更されないことを検証
func TestPersonalize_NilProfilePassThrough(t *testing.T) {
	p := New()

	result := p.Personalize("This concept is important", nil)

	if result.Content != "This concept is important" {
		t.Errorf("content = %q, want unchanged", result.Content)
	}
	if len(result.AppliedRules) != 0 {
		t.Errorf("applied rules = %v, want none", result.AppliedRules)
	}
}

// 全フィールド未設定のプロファイルでも変更されないことを検証
func TestPersonalize_EmptyProfilePassThrough(t *testing.T) {
	p := New()

	result := p.Personalize("An algorithm on a board", &model.Profile{})

	if result.Content != "An algorithm on a board" {
		t.Errorf("content = %q, want unchanged", result.Content)
	}
	if len(result.AppliedRules) != 0 {
		t.Errorf("applied rules = %v, want none", result.AppliedRules)
	}
}

// 初心者でないプロファイルでは専門用語が注釈されないことを検証
func TestPersonalize_NonBeginnerNoAnnotation(t *testing.T) {
	p := New()
	profile := &model.Profile{
		SoftwareBackground: strPtr("10 years of systems programming"),
	}

	result := p.Personalize("This concept is important", profile)

	if result.Content != "This concept is important" {
		t.Errorf("content = %q, want unchanged", result.Content)
	}
}

// Arduino経験者でハードウェア用語に馴染みノートが付くことを検証
func TestPersonalize_HardwareFamiliarity(t *testing.T) {
	p := New()
	profile := &model.Profile{
		HardwareBackground: strPtr("I have built projects with Arduino"),
	}

	result := p.Personalize("Connect the microcontroller to power", profile)

	want := "Connect the microcontroller (like your Arduino) to power"
	if result.Content != want {
		t.Errorf("content = %q, want %q", result.Content, want)
	}
	if len(result.AppliedRules) != 1 || result.AppliedRules[0] != RuleHardwareFamiliarity {
		t.Errorf("applied rules = %v, want [%s]", result.AppliedRules, RuleHardwareFamiliarity)
	}
}

// Raspberry Pi経験が認識されることを検証
func TestPersonalize_RaspberryPiFamiliarity(t *testing.T) {
	p := New()
	profile := &model.Profile{
		HardwareBackground: strPtr("raspberry pi tinkering"),
	}

	result := p.Personalize("Attach the sensor to the board", profile)

	if !strings.Contains(result.Content, "board (like your Raspberry Pi)") {
		t.Errorf("content = %q, want Raspberry Pi note", result.Content)
	}
}

// 学習目標キーワードで補足ノートが末尾に付加されることを検証
func TestPersonalize_GoalNoteAppended(t *testing.T) {
	p := New()
	profile := &model.Profile{
		LearningGoal: strPtr("I want to build robotics projects"),
	}

	result := p.Personalize("Chapter text.", profile)

	if !strings.HasPrefix(result.Content, "Chapter text.") {
		t.Errorf("content = %q, original text should be preserved", result.Content)
	}
	if !strings.Contains(result.Content, "robotics project") {
		t.Errorf("content = %q, want robotics note appended", result.Content)
	}
	if len(result.AppliedRules) != 1 || result.AppliedRules[0] != RuleGoalNote {
		t.Errorf("applied rules = %v, want [%s]", result.AppliedRules, RuleGoalNote)
	}
}

// 認識されない学習目標ではノートが付かないことを検証
func TestPersonalize_UnrecognizedGoalNoNote(t *testing.T) {
	p := New()
	profile := &model.Profile{
		LearningGoal: strPtr("just curious"),
	}

	result := p.Personalize("Chapter text.", profile)

	if result.Content != "Chapter text." {
		t.Errorf("content = %q, want unchanged", result.Content)
	}
}

// 複数ルールが同時に適用されることを検証
func TestPersonalize_MultipleRules(t *testing.T) {
	p := New()
	profile := &model.Profile{
		SoftwareBackground: strPtr("beginner"),
		HardwareBackground: strPtr("arduino"),
		LearningGoal:       strPtr("embedded systems"),
	}

	result := p.Personalize("The algorithm runs on the microcontroller", profile)

	if !strings.Contains(result.Content, "algorithm (key term, explained for beginners)") {
		t.Errorf("content = %q, want jargon annotation", result.Content)
	}
	if !strings.Contains(result.Content, "microcontroller (like your Arduino)") {
		t.Errorf("content = %q, want hardware note", result.Content)
	}
	if !strings.Contains(result.Content, "embedded systems") {
		t.Errorf("content = %q, want goal note", result.Content)
	}
	if len(result.AppliedRules) != 3 {
		t.Errorf("applied rules = %v, want 3 rules", result.AppliedRules)
	}
}

// HTMLスクリプトがサニタイズで除去されることを検証
func TestPersonalize_SanitizesScript(t *testing.T) {
	p := New()

	result := p.Personalize(`Hello <script>alert("x")</script>world`, nil)

	if strings.Contains(result.Content, "<script>") {
		t.Errorf("content = %q, script tag must be removed", result.Content)
	}
	if !strings.Contains(result.Content, "Hello") || !strings.Contains(result.Content, "world") {
		t.Errorf("content = %q, text should be preserved", result.Content)
	}
}
