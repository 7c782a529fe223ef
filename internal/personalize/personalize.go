// Package personalize は学習プロファイルに基づく章コンテンツの
// 決定的なテキスト置換パーソナライズを提供する。
package personalize

import (
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/kenta/hondana/internal/model"
)

// 適用ルール名
const (
	RuleBeginnerJargon      = "beginner_jargon"
	RuleHardwareFamiliarity = "hardware_familiarity"
	RuleGoalNote            = "goal_note"
)

var (
	jargonPattern   = regexp.MustCompile(`(?i)\b(concept|algorithm|function)\b`)
	hardwarePattern = regexp.MustCompile(`(?i)\b(microcontroller|board)\b`)
)

// 学習目標キーワードと末尾に付加する補足ノートの対応。
// 複数キーワードが含まれる場合に備えて判定順を固定する。
var goalNotes = []struct {
	keyword string
	note    string
}{
	{"robotics", "Tip: try applying what you learned here to a small robotics project."},
	{"web", "Tip: the ideas in this chapter carry over directly to web development."},
	{"embedded", "Tip: keep this chapter in mind when working on embedded systems."},
	{"games", "Tip: this chapter's techniques show up often in game development."},
}

// Result はパーソナライズの結果を表す。
type Result struct {
	Content      string
	AppliedRules []string
}

// Personalizer は章コンテンツのサニタイズと置換パイプラインを実装する。
// 状態を持たず、外部呼び出しも行わない純粋な変換。
type Personalizer struct {
	sanitizer *bluemonday.Policy
}

// New は新しいPersonalizerを生成する。
func New() *Personalizer {
	return &Personalizer{sanitizer: bluemonday.UGCPolicy()}
}

// Personalize はコンテンツをサニタイズし、プロファイルに応じた置換を適用する。
// profileがnilまたは全フィールド未設定の場合、サニタイズ済みコンテンツを
// 変更なしで返す（ノート付加なし）。
func (p *Personalizer) Personalize(content string, profile *model.Profile) Result {
	result := Result{Content: p.sanitizer.Sanitize(content)}

	if profile == nil {
		return result
	}

	if containsFold(profile.SoftwareBackground, "beginner") {
		annotated := jargonPattern.ReplaceAllString(result.Content, "$1 (key term, explained for beginners)")
		if annotated != result.Content {
			result.Content = annotated
			result.AppliedRules = append(result.AppliedRules, RuleBeginnerJargon)
		}
	}

	if device := familiarDevice(profile.HardwareBackground); device != "" {
		annotated := hardwarePattern.ReplaceAllString(result.Content, "$1 (like your "+device+")")
		if annotated != result.Content {
			result.Content = annotated
			result.AppliedRules = append(result.AppliedRules, RuleHardwareFamiliarity)
		}
	}

	if note := goalNote(profile.LearningGoal); note != "" {
		result.Content += "\n\n" + note
		result.AppliedRules = append(result.AppliedRules, RuleGoalNote)
	}

	return result
}

// containsFold はnil許容文字列がキーワードを大文字小文字無視で含むかを返す。
func containsFold(s *string, keyword string) bool {
	if s == nil {
		return false
	}
	return strings.Contains(strings.ToLower(*s), keyword)
}

// familiarDevice はハードウェア経験から馴染みのあるデバイス名を導出する。
func familiarDevice(hardwareBackground *string) string {
	switch {
	case containsFold(hardwareBackground, "arduino"):
		return "Arduino"
	case containsFold(hardwareBackground, "raspberry"):
		return "Raspberry Pi"
	}
	return ""
}

// goalNote は学習目標キーワードに対応する補足ノートを返す。
func goalNote(learningGoal *string) string {
	if learningGoal == nil {
		return ""
	}
	lower := strings.ToLower(*learningGoal)
	for _, gn := range goalNotes {
		if strings.Contains(lower, gn.keyword) {
			return gn.note
		}
	}
	return ""
}
