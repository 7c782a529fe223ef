package model

import "time"

// Profile はPrincipalごとの学習プロファイルを表す。
// principals 1件に対して最大1件（UNIQUE principal_id）。
// 初回書き込み時にUPSERTで遅延作成され、principal削除時にCASCADE削除される。
type Profile struct {
	ID                 string
	PrincipalID        string
	SkillLevel         *string
	SoftwareBackground *string
	HardwareBackground *string
	LearningGoal       *string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// ProfileUpdate はプロファイルの部分更新内容を表す。
// nilのフィールドは既存値を維持する。
type ProfileUpdate struct {
	SkillLevel         *string
	SoftwareBackground *string
	HardwareBackground *string
	LearningGoal       *string
}

// IsEmpty は更新対象のフィールドが1つも指定されていないかを返す。
func (u ProfileUpdate) IsEmpty() bool {
	return u.SkillLevel == nil &&
		u.SoftwareBackground == nil &&
		u.HardwareBackground == nil &&
		u.LearningGoal == nil
}
