// Package lexicon holds the Korean vocabulary tables that drive keyword
// extraction, intent matching and response filtering. The built-in tables
// cover the default tour/hotel catalog; deployments can override individual
// tables with a YAML file (LEXICON_PATH).
package lexicon

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// IntentRule maps a set of trigger phrases to an intent label. Rules are
// evaluated in order and the first match wins.
type IntentRule struct {
	Intent  string   `yaml:"intent"`
	Phrases []string `yaml:"phrases"`
}

type Lexicon struct {
	DefaultRegion string `yaml:"default_region"`

	HotelKeywords []string `yaml:"hotel_keywords"`
	TourKeywords  []string `yaml:"tour_keywords"`
	PriceKeywords []string `yaml:"price_keywords"`

	// SubtypeTags are the tour family markers (패밀리, 골프, ...) used for
	// topic switching, sticky context and result filtering.
	SubtypeTags []string `yaml:"subtype_tags"`

	IntentRules []IntentRule        `yaml:"intent_rules"`
	Synonyms    map[string][]string `yaml:"synonyms"`

	Greetings []string `yaml:"greetings"`

	// ChildScopeWords/AdultScopeWords decide when a question is scoped to
	// children only, which triggers removal of adult pricing lines.
	ChildScopeWords []string `yaml:"child_scope_words"`
	AdultScopeWords []string `yaml:"adult_scope_words"`

	// ChildWords/AdultWords are the wider synonym sets used when deciding
	// whether price phrasing rules may be relaxed.
	ChildWords []string `yaml:"child_words"`
	AdultWords []string `yaml:"adult_words"`

	PeopleCountWords   []string `yaml:"people_count_words"`
	PriceQuestionWords []string `yaml:"price_question_words"`
	FollowUpWords      []string `yaml:"follow_up_words"`
	InfoRequestWords   []string `yaml:"info_request_words"`
	AmbiguousWords     []string `yaml:"ambiguous_words"`

	ForbiddenPhrases    []string `yaml:"forbidden_phrases"`
	PriceAllowedPhrases []string `yaml:"price_allowed_phrases"`

	// AdultLineMarkers mark whole lines that must be dropped when a
	// child-only question produced adult pricing in the answer.
	AdultLineMarkers []string `yaml:"adult_line_markers"`

	// SubtypePriceTokens lists price tokens that belong to a specific tour
	// family. When the conversation is pinned to another family, lines
	// carrying these tokens are treated as contamination.
	SubtypePriceTokens map[string][]string `yaml:"subtype_price_tokens"`

	DataIndicators  []string `yaml:"data_indicators"`
	PriceIndicators []string `yaml:"price_indicators"`

	DescriptionQueryTypes map[string][]string `yaml:"description_query_types"`
}

// Default returns the built-in vocabulary for the Vietnamese travel catalog.
func Default() *Lexicon {
	return &Lexicon{
		DefaultRegion: "다낭",

		HotelKeywords: []string{"호텔", "숙박", "리조트", "펜션", "게스트하우스", "객실", "룸"},
		TourKeywords: []string{
			"투어", "여행", "관광", "체험", "액티비티", "일정",
			"래프팅", "골프", "바나힐", "호이안",
			"패밀리", "패밀리팩", "라이트", "라이트팩", "베스트", "베스트팩",
		},
		PriceKeywords: []string{
			"가격", "얼마", "비용", "요금", "돈", "금액", "값",
			"성인", "어른", "아이", "아동", "유아", "소아", "어린이", "애기",
			"몇명", "몇 명", "인원",
		},

		SubtypeTags: []string{"패밀리", "베스트", "라이트", "골프", "래프팅", "바나힐", "호이안"},

		IntentRules: []IntentRule{
			{Intent: "general", Phrases: []string{"무슨 패키지", "어떤 패키지", "패키지가 있", "패키지 뭐", "어떤거 있어", "무엇이 있어"}},
			{Intent: "tour", Phrases: []string{"투어", "관광", "체험", "액티비티", "투어가"}},
			{Intent: "hotel", Phrases: []string{"호텔", "숙박", "리조트", "펜션"}},
			{Intent: "price", Phrases: []string{"가격", "비용", "요금", "얼마", "명은", "명이면", "인은", "인이면", "돈", "금액"}},
		},

		Synonyms: map[string][]string{
			"패밀리": {"패밀리팩", "family", "가족", "가족투어", "가족패키지"},
			"골프":  {"golf", "골프투어", "골프패키지", "골프여행", "골핑"},
			"래프팅": {"rafting", "급류타기", "래프팅투어", "물놀이"},
			"바나힐": {"바나 힐", "bana hill", "banahil", "바나힐투어"},
			"스쿠버": {"scuba", "다이빙", "diving", "스노클링", "스쿠버다이빙"},
			"라이트": {"라이트팩", "light", "라이트투어"},
			"베스트": {"베스트팩", "best", "베스트투어"},

			"다낭":  {"danang", "da nang", "다낭시"},
			"호이안": {"hoian", "hoi an", "호이안시"},
			"나트랑": {"nhatrang", "nha trang", "나트랑시"},
			"푸꾸옥": {"phuquoc", "phu quoc", "푸꾸옥섬"},

			"호텔":  {"hotel", "숙박", "숙소", "리조트", "resort"},
			"리조트": {"resort", "호텔", "hotel", "펜션"},

			"가격": {"비용", "요금", "얼마", "돈", "금액", "값"},
			"비용": {"가격", "요금", "얼마", "돈", "금액", "값"},

			"구성": {"내용", "포함", "정보", "상세", "설명", "뭐"},
			"내용": {"구성", "포함", "정보", "상세", "설명", "뭐에요"},
			"정보": {"내용", "구성", "상세", "설명", "알려줘"},
		},

		Greetings: []string{"안녕하세요", "안녕", "hi", "hello", "헬로", "하이"},

		ChildScopeWords: []string{"아이", "아동", "애기", "애", "유아", "소아"},
		AdultScopeWords: []string{"성인", "어른"},

		ChildWords: []string{
			"아이", "아동", "애기", "어린이", "소아", "유아", "애들",
			"꼬마", "꼬마들", "애", "어린애", "작은애", "꼬맹이", "애기들",
		},
		AdultWords: []string{"성인", "어른", "어른들", "어른분", "성인분", "성년", "대인", "어른분들", "성인들"},

		PeopleCountWords: withNumericCounts([]string{
			"한명", "두명", "세명", "네명", "다섯명", "여섯명", "일곱명", "여덟명", "아홉명", "열명",
			"몇명", "몇 명", "몇분", "몇 분", "인원", "사람", "명수", "1인", "2인", "3인", "4인", "5인",
		}),
		PriceQuestionWords: []string{
			"얼마", "가격", "비용", "요금", "돈", "값", "금액", "경비", "료금", "비",
			"추가", "더하면", "플러스", "더해서", "포함해서", "합치면", "총", "전체",
			"얼만", "얼마나", "얼마정도", "얼마쯤", "가격이", "비용이", "요금이",
			"계산", "정산", "지불", "결제", "페이", "지불해야", "내야",
		},
		FollowUpWords:    []string{"추가", "더", "그럼", "아이", "어린이", "성인", "명", "몇", "얼마", "가격"},
		InfoRequestWords: []string{"내용", "정보", "자세한", "구체적인", "보여줘", "알려줘", "설명", "상세", "뭐에요", "뭐야", "무엇", "어떤", "구성", "포함", "details", "information"},
		AmbiguousWords:   []string{"가격", "얼마", "비용", "요금", "아이", "성인", "호텔", "포함"},

		ForbiddenPhrases: []string{
			"1인 기준", "성인 1인 기준", "기본 패키지", "포함 사항", "일반적으로",
			"보통", "대체로", "추정", "예상", "대략", "기준으로", "기준:",
			"1인당", "인당", "개인당", "1명당", "명당",
		},
		PriceAllowedPhrases: []string{
			"1인당", "인당", "개인당", "1명당", "명당",
			"기본 패키지", "일반적으로", "보통", "대체로",
			"추정", "예상", "대략", "기준으로", "기준:",
		},

		AdultLineMarkers: []string{
			"예약금", "총합은:", "총 가격은", "를 포함한 총",
			"18만원", "$1,092", "$1,587",
		},

		SubtypePriceTokens: map[string][]string{
			"래프팅": {"$340", "$49", "$438", "340달러", "49달러"},
		},

		DataIndicators:  []string{"원", "가격", "기간", "투어", "호텔", "예약"},
		PriceIndicators: []string{"얼마", "가격", "비용", "요금", "금액", "돈"},

		DescriptionQueryTypes: map[string][]string{
			"price":    {"가격", "얼마", "비용", "요금", "돈", "금액", "값", "$", "만원", "원", "유아", "아동", "성인", "어른"},
			"schedule": {"일정", "스케줄", "시간", "몇시", "언제", "일차", "날짜"},
			"content":  {"내용", "구성", "포함", "활동", "체험", "프로그램"},
			"location": {"위치", "장소", "어디", "지역", "주소"},
			"criteria": {"기준", "나이", "몇살", "연령", "조건"},
		},
	}
}

// Load returns the default lexicon with any non-empty tables from the YAML
// file at path overriding the built-in ones. An empty path returns Default().
func Load(path string) (*Lexicon, error) {
	lex := Default()
	if strings.TrimSpace(path) == "" {
		return lex, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read lexicon file: %w", err)
	}
	override := &Lexicon{}
	if err := yaml.Unmarshal(raw, override); err != nil {
		return nil, fmt.Errorf("parse lexicon file: %w", err)
	}
	lex.merge(override)
	return lex, nil
}

func (l *Lexicon) merge(o *Lexicon) {
	if strings.TrimSpace(o.DefaultRegion) != "" {
		l.DefaultRegion = o.DefaultRegion
	}
	mergeList(&l.HotelKeywords, o.HotelKeywords)
	mergeList(&l.TourKeywords, o.TourKeywords)
	mergeList(&l.PriceKeywords, o.PriceKeywords)
	mergeList(&l.SubtypeTags, o.SubtypeTags)
	if len(o.IntentRules) > 0 {
		l.IntentRules = o.IntentRules
	}
	if len(o.Synonyms) > 0 {
		l.Synonyms = o.Synonyms
	}
	mergeList(&l.Greetings, o.Greetings)
	mergeList(&l.ChildScopeWords, o.ChildScopeWords)
	mergeList(&l.AdultScopeWords, o.AdultScopeWords)
	mergeList(&l.ChildWords, o.ChildWords)
	mergeList(&l.AdultWords, o.AdultWords)
	mergeList(&l.PeopleCountWords, o.PeopleCountWords)
	mergeList(&l.PriceQuestionWords, o.PriceQuestionWords)
	mergeList(&l.FollowUpWords, o.FollowUpWords)
	mergeList(&l.InfoRequestWords, o.InfoRequestWords)
	mergeList(&l.AmbiguousWords, o.AmbiguousWords)
	mergeList(&l.ForbiddenPhrases, o.ForbiddenPhrases)
	mergeList(&l.PriceAllowedPhrases, o.PriceAllowedPhrases)
	mergeList(&l.AdultLineMarkers, o.AdultLineMarkers)
	if len(o.SubtypePriceTokens) > 0 {
		l.SubtypePriceTokens = o.SubtypePriceTokens
	}
	mergeList(&l.DataIndicators, o.DataIndicators)
	mergeList(&l.PriceIndicators, o.PriceIndicators)
	if len(o.DescriptionQueryTypes) > 0 {
		l.DescriptionQueryTypes = o.DescriptionQueryTypes
	}
}

func mergeList(dst *[]string, src []string) {
	if len(src) > 0 {
		*dst = src
	}
}

// SynonymsFor returns synonyms for word, looking the table up in both
// directions: entries keyed by the word, and entries listing the word as one
// of their synonyms. The word itself is excluded and order is preserved.
func (l *Lexicon) SynonymsFor(word string) []string {
	lowered := strings.ToLower(word)
	collected := make([]string, 0, 8)

	if direct, ok := l.Synonyms[lowered]; ok {
		collected = append(collected, direct...)
	}
	keys := make([]string, 0, len(l.Synonyms))
	for key := range l.Synonyms {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		values := l.Synonyms[key]
		for _, value := range values {
			if strings.ToLower(value) == lowered {
				collected = append(collected, key)
				collected = append(collected, values...)
				break
			}
		}
	}

	unique := make([]string, 0, len(collected))
	for _, candidate := range collected {
		if strings.ToLower(candidate) == lowered {
			continue
		}
		if !containsFold(unique, candidate) {
			unique = append(unique, candidate)
		}
	}
	return unique
}

// SubtypeIn returns the first subtype tag contained in text, or "".
func (l *Lexicon) SubtypeIn(text string) string {
	lowered := strings.ToLower(text)
	for _, tag := range l.SubtypeTags {
		if strings.Contains(lowered, tag) {
			return tag
		}
	}
	return ""
}

func containsFold(list []string, value string) bool {
	for _, item := range list {
		if strings.EqualFold(item, value) {
			return true
		}
	}
	return false
}

func withNumericCounts(extra []string) []string {
	counts := make([]string, 0, 20+len(extra))
	for i := 1; i <= 20; i++ {
		counts = append(counts, fmt.Sprintf("%d명", i))
	}
	return append(counts, extra...)
}
