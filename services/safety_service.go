package services

import (
	"strings"
)

// 危機的な表現の固定リスト。小文字の部分一致のみで、語形変化や否定形は
// 拾えない（"I don't want to hurt myself" もマッチする）。既知の制限として
// このままにしている
var crisisKeywords = []string{
	"suicide",
	"kill myself",
	"end my life",
	"self harm",
	"hurt myself",
	"harm others",
	"cut myself",
	"want to die",
}

const CrisisResponse = "I hear how much pain you're in right now, and I want you to know you aren't alone. " +
	"Because I'm a conversational companion and not a crisis service, I'm limited in how I can help " +
	"with these specific feelings. Please reach out to a professional or a local crisis hotline " +
	"immediately. You matter, and there is support available for you."

// CheckSafety はメッセージに危機キーワードが含まれるかを確認する。
// 最初のマッチで固定の応答文を返す。副作用なし
func CheckSafety(message string) (string, bool) {
	msgLower := strings.ToLower(message)
	for _, keyword := range crisisKeywords {
		if strings.Contains(msgLower, keyword) {
			return CrisisResponse, true
		}
	}
	return "", false
}
