package services

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/sahilsama/calmi/models"
)

const musicInstruction = `You are an emotionally aware music therapist.

Using the USER CONTEXT, recommend exactly 6 songs.

Return ONLY valid JSON.
Do not include markdown.
Do not include backticks.
Do not include explanations.

The response must be a single JSON object in this exact format:

{"items":[
{"id":"1","title":"...","artist":"...","mood":"calm","reason":"..."},
{"id":"2","title":"...","artist":"...","mood":"...","reason":"..."},
{"id":"3","title":"...","artist":"...","mood":"...","reason":"..."},
{"id":"4","title":"...","artist":"...","mood":"...","reason":"..."},
{"id":"5","title":"...","artist":"...","mood":"...","reason":"..."},
{"id":"6","title":"...","artist":"...","mood":"...","reason":"..."}
]}`

// "items" キーを含むJSONオブジェクトらしき部分を拾う
var itemsObjectPattern = regexp.MustCompile(`\{[\s\S]*"items"[\s\S]*\}`)

// NormalizeProfile はcamelCase/snake_case混在のプロフィールを固定キーに揃える。
// 欠けている項目は空文字で埋める
func NormalizeProfile(profile map[string]interface{}) map[string]string {
	return map[string]string{
		"name":                profileString(profile, "name"),
		"identity":            profileString(profile, "identity"),
		"age_range":           profileString(profile, "ageRange", "age_range"),
		"relationship_status": profileString(profile, "relationshipStatus", "relationship_status"),
		"support_type":        profileString(profile, "supportType", "support_type"),
		"communication_type":  profileString(profile, "communicationPreference", "communication_type"),
	}
}

func profileString(profile map[string]interface{}, keys ...string) string {
	for _, key := range keys {
		if v, ok := profile[key]; ok {
			if s, ok := v.(string); ok {
				return s
			}
		}
	}
	return ""
}

// BuildMusicPrompt はユーザーコンテキストと固定のレコメンド指示を結合する
func BuildMusicPrompt(normalized map[string]string) string {
	var b strings.Builder
	b.WriteString("USER CONTEXT:\n")
	fmt.Fprintf(&b, "- Name: %s\n", normalized["name"])
	fmt.Fprintf(&b, "- Identity: %s\n", normalized["identity"])
	fmt.Fprintf(&b, "- Age Range: %s\n", normalized["age_range"])
	fmt.Fprintf(&b, "- Relationship Status: %s\n", normalized["relationship_status"])
	fmt.Fprintf(&b, "- Support Type: %s\n", normalized["support_type"])
	fmt.Fprintf(&b, "- Communication Preference: %s\n", normalized["communication_type"])
	b.WriteString("\n")
	fmt.Fprintf(&b, "PRIMARY NEED: %s\n", normalized["support_type"])
	b.WriteString("\n")
	b.WriteString(musicInstruction)
	return b.String()
}

// ParseRecommendations はモデル出力からレコメンド候補のリストを取り出す。
// 厳密なパースを試し、だめなら "items" を含むオブジェクトを正規表現で探す。
// どれも失敗したら空のリストを返す。エラーは返さない
func ParseRecommendations(raw string) []interface{} {
	raw = strings.TrimSpace(raw)

	var parsed interface{}
	if err := json.Unmarshal([]byte(raw), &parsed); err == nil {
		switch v := parsed.(type) {
		case map[string]interface{}:
			if items, ok := v["items"]; ok {
				if list, ok := items.([]interface{}); ok {
					return list
				}
			}
			// "items" がリストでなければ空扱い
			return []interface{}{}
		case []interface{}:
			return v
		}
	}

	match := itemsObjectPattern.FindString(raw)
	if match != "" {
		var obj map[string]interface{}
		if err := json.Unmarshal([]byte(match), &obj); err == nil {
			if list, ok := obj["items"].([]interface{}); ok {
				return list
			}
		}
	}

	return []interface{}{}
}

// NormalizeRecommendations は候補を固定スキーマに整える。先頭6件に切り詰め、
// 辞書でないエントリは落とし、欠けた項目は既定値で埋める。
// idが無い場合のみ位置に応じて1始まりで振り直す
func NormalizeRecommendations(items []interface{}) []models.RecommendationItem {
	if len(items) > 6 {
		items = items[:6]
	}

	out := make([]models.RecommendationItem, 0, len(items))
	for i, entry := range items {
		item, ok := entry.(map[string]interface{})
		if !ok {
			continue
		}
		out = append(out, models.RecommendationItem{
			ID:     withDefault(itemString(item, "id"), strconv.Itoa(i+1)),
			Title:  withDefault(itemString(item, "title"), "Unknown"),
			Artist: withDefault(itemString(item, "artist"), "Unknown"),
			Mood:   withDefault(itemString(item, "mood"), "calm"),
			Reason: withDefault(itemString(item, "reason"), "Recommended for you."),
		})
	}
	return out
}

func itemString(item map[string]interface{}, key string) string {
	v, ok := item[key]
	if !ok || v == nil {
		return ""
	}
	switch s := v.(type) {
	case string:
		return strings.TrimSpace(s)
	case float64:
		if s == math.Trunc(s) {
			return strconv.FormatInt(int64(s), 10)
		}
		return strconv.FormatFloat(s, 'f', -1, 64)
	}
	return ""
}

func withDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
