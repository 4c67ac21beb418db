// Package i18n holds the popup's two string tables and the presenter that
// switches between them.
package i18n

// Locale is a supported UI language.
type Locale string

const (
	// Korean is the primary locale and the fallback for anything unknown.
	Korean Locale = "ko"

	// English is the secondary locale.
	English Locale = "en"
)

// Primary is the locale used when nothing valid was persisted.
const Primary = Korean

// LabelID names a fixed label on one of the popup pages.
type LabelID string

const (
	LabelTabCheck  LabelID = "tabCheck"
	LabelTabEval   LabelID = "tabEval"
	LabelHero      LabelID = "hero"
	LabelStart     LabelID = "startBtn"
	LabelSend      LabelID = "sendBtn"
	LabelIsAd      LabelID = "isAdBtn"
	LabelGenuine   LabelID = "confirmBtn"
	LabelRecommend LabelID = "recommendBtn"
	LabelResult    LabelID = "resultTitle"
	LabelScore     LabelID = "scoreTitle"
)

// Labels lists every fixed label, in render order.
var Labels = []LabelID{
	LabelTabCheck, LabelTabEval, LabelHero, LabelStart, LabelSend,
	LabelIsAd, LabelGenuine, LabelRecommend, LabelResult, LabelScore,
}

// Strings is one locale's string table.
type Strings struct {
	// Labels are the fixed page labels.
	Labels map[LabelID]string

	// ToggleLabel is the accessible label of the language toggle.
	ToggleLabel string

	// Placeholder is the hint shown before any selection is loaded.
	Placeholder string

	SelectFirst      string
	Working          string
	NoResponse       string
	ServerError      string
	ScoreUnavailable string

	SavedAd      string
	SavedGenuine string
	SaveFailed   string

	InvalidResults string
	LoadFailed     string
	StoreField     string
	ReasonField    string
	ReviewField    string
}

// Table maps each locale to its strings.
type Table map[Locale]Strings

// DefaultTable is the built-in Korean/English table.
func DefaultTable() Table {
	return Table{
		Korean: {
			Labels: map[LabelID]string{
				LabelTabCheck:  "리뷰 검사하기",
				LabelTabEval:   "리뷰 평가하기",
				LabelHero:      "더 정확한 판단을 할 수 있도록\n리뷰를 평가해주세요!",
				LabelStart:     "시작하기",
				LabelSend:      "검사하기",
				LabelIsAd:      "광고예요",
				LabelGenuine:   "일반 리뷰예요",
				LabelRecommend: "추천 받기",
				LabelResult:    "분석 결과",
				LabelScore:     "광고 확률",
			},
			ToggleLabel:      "언어 변경",
			Placeholder:      "리뷰를 드래그해서 선택하세요.",
			SelectFirst:      "텍스트를 먼저 선택해 주세요.",
			Working:          "분석 중...",
			NoResponse:       "응답이 없습니다.",
			ServerError:      "서버 오류가 발생했습니다.",
			ScoreUnavailable: "광고 확률을 불러오지 못했습니다.",
			SavedAd:          "광고로 저장했습니다.",
			SavedGenuine:     "일반 리뷰로 저장했습니다.",
			SaveFailed:       "저장에 실패했습니다.",
			InvalidResults:   "잘못된 결과 형식입니다.",
			LoadFailed:       "결과를 불러오는 데 실패했습니다.",
			StoreField:       "가게",
			ReasonField:      "이유",
			ReviewField:      "리뷰",
		},
		English: {
			Labels: map[LabelID]string{
				LabelTabCheck:  "Check Review",
				LabelTabEval:   "Evaluate Reviews",
				LabelHero:      "Help us improve accuracy by\nrating reviews!",
				LabelStart:     "Start",
				LabelSend:      "Check",
				LabelIsAd:      "It's an ad",
				LabelGenuine:   "Genuine review",
				LabelRecommend: "Get recommendations",
				LabelResult:    "Result",
				LabelScore:     "Ad probability",
			},
			ToggleLabel:      "Switch language",
			Placeholder:      "Drag to select a review.",
			SelectFirst:      "Please select some text first.",
			Working:          "Analyzing...",
			NoResponse:       "No response.",
			ServerError:      "A server error occurred.",
			ScoreUnavailable: "Score unavailable.",
			SavedAd:          "Saved as an ad.",
			SavedGenuine:     "Saved as a genuine review.",
			SaveFailed:       "Failed to save.",
			InvalidResults:   "Invalid result format.",
			LoadFailed:       "Failed to load results.",
			StoreField:       "Store",
			ReasonField:      "Reason",
			ReviewField:      "Review",
		},
	}
}

// ShortCode is the code shown on the toggle: the locale it switches to.
func (l Locale) ShortCode() string {
	if l == Korean {
		return "EN"
	}

	return "KO"
}

// Other returns the locale the toggle switches to.
func (l Locale) Other() Locale {
	if l == Korean {
		return English
	}

	return Korean
}
