package llm

import (
	"fmt"
	"time"
)

// weekdayNames for the system prompt's date line
var weekdayNames = [7]string{"일요일", "월요일", "화요일", "수요일", "목요일", "금요일", "토요일"}

// classifySystemPrompt instructs the model to manage the shared
// calendar through the provided functions, converting relative Korean
// dates against today's date
func classifySystemPrompt(now time.Time) string {
	return fmt.Sprintf(`당신은 공유 캘린더 관리 어시스턴트입니다.
오늘 날짜: %s (%s)

사용자의 한국어 메시지를 분석하여 적절한 함수를 호출하세요.

## 규칙
1. 날짜가 상대적이면 (내일, 다음주 등) 오늘 날짜 기준으로 YYYY-MM-DD 절대 날짜로 변환하세요.
2. 시간은 HH:MM 24시간 형식으로 변환하세요.
3. "이번 주", "이번주", "주간"이 포함된 조회는 get_week_events를 사용하세요.
4. "삭제", "취소", "없애줘", "지워줘"는 delete_event 또는 delete_events_by_range를 사용하세요.
5. "변경", "수정", "바꿔", "옮겨"는 edit_event를 사용하세요.
6. 특정 날짜나 키워드로 찾는 조회는 search_events를 사용하세요.
7. 여러 날에 반복되는 일정은 add_events_by_range, 여러 날에 걸친 하나의 일정은 add_multiday_event를 사용하세요.
8. 길찾기 요청은 navigate를 사용하세요.
9. 일정과 무관한 메시지에는 함수를 호출하지 말고 한국어로 간단히 답하세요.`,
		now.Format("2006-01-02"), weekdayNames[now.Weekday()])
}

// summarizeSystemPrompt drives the second, tool-free pass that turns
// raw query results into a conversational answer
const summarizeSystemPrompt = `당신은 공유 캘린더 관리 어시스턴트입니다.
대화에 포함된 일정 조회 결과를 바탕으로 사용자의 질문에 한국어로 간결하게 답하세요.
조회 결과에 없는 일정을 지어내지 마세요. 키워드가 주어졌다면 관련된 일정만 골라서 답하세요.`

// toolDef is the chat-completions function definition format
type toolDef struct {
	Type     string  `json:"type"`
	Function funcDef `json:"function"`
}

type funcDef struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

func object(required []string, props map[string]any) map[string]any {
	params := map[string]any{
		"type":       "object",
		"properties": props,
	}
	if len(required) > 0 {
		params["required"] = required
	}
	return params
}

func str(desc string) map[string]any {
	return map[string]any{"type": "string", "description": desc}
}

// toolDefs returns the function definitions for the 10 supported
// operations. Offered only on the classify pass.
func toolDefs() []toolDef {
	defs := []funcDef{
		{
			Name:        "add_event",
			Description: "하루짜리 일정을 추가합니다",
			Parameters: object([]string{"title", "date", "start_time"}, map[string]any{
				"title":       str("일정 제목"),
				"date":        str("YYYY-MM-DD"),
				"start_time":  str("HH:MM"),
				"end_time":    str("HH:MM, 없으면 생략"),
				"location":    str("장소, 없으면 생략"),
				"description": str("설명, 없으면 생략"),
			}),
		},
		{
			Name:        "add_events_by_range",
			Description: "기간 내 매일 반복되는 일정을 추가합니다",
			Parameters: object([]string{"title", "date_from", "date_to", "start_time"}, map[string]any{
				"title":      str("일정 제목"),
				"date_from":  str("시작일 YYYY-MM-DD"),
				"date_to":    str("마지막일 YYYY-MM-DD (포함)"),
				"start_time": str("HH:MM"),
				"end_time":   str("HH:MM, 없으면 생략"),
			}),
		},
		{
			Name:        "add_multiday_event",
			Description: "여러 날에 걸친 하나의 종일 일정을 추가합니다 (여행, 출장 등)",
			Parameters: object([]string{"title", "date_from", "date_to"}, map[string]any{
				"title":       str("일정 제목"),
				"date_from":   str("시작일 YYYY-MM-DD"),
				"date_to":     str("마지막일 YYYY-MM-DD (포함)"),
				"description": str("설명, 없으면 생략"),
			}),
		},
		{
			Name:        "delete_event",
			Description: "일정 하나를 삭제합니다",
			Parameters: object([]string{"title", "date"}, map[string]any{
				"title":      str("삭제할 일정 제목 (부분 일치 가능)"),
				"date":       str("YYYY-MM-DD"),
				"start_time": str("HH:MM, 알고 있으면"),
			}),
		},
		{
			Name:        "delete_events_by_range",
			Description: "기간 내 일정을 한꺼번에 삭제합니다",
			Parameters: object([]string{"date_from", "date_to"}, map[string]any{
				"keyword":   str("제목 키워드, 없으면 기간 내 전체"),
				"date_from": str("시작일 YYYY-MM-DD"),
				"date_to":   str("마지막일 YYYY-MM-DD (포함)"),
			}),
		},
		{
			Name:        "edit_event",
			Description: "일정을 수정합니다",
			Parameters: object([]string{"title", "date", "changes"}, map[string]any{
				"title":      str("수정할 일정 제목 (부분 일치 가능)"),
				"date":       str("YYYY-MM-DD"),
				"start_time": str("HH:MM, 알고 있으면"),
				"changes": object(nil, map[string]any{
					"title":       str("새 제목"),
					"date":        str("새 날짜 YYYY-MM-DD"),
					"start_time":  str("새 시작시간 HH:MM"),
					"end_time":    str("새 종료시간 HH:MM"),
					"location":    str("새 장소"),
					"description": str("새 설명"),
				}),
			}),
		},
		{
			Name:        "get_today_events",
			Description: "오늘 일정을 조회합니다",
			Parameters:  object(nil, map[string]any{}),
		},
		{
			Name:        "get_week_events",
			Description: "이번 주 일정을 조회합니다",
			Parameters:  object(nil, map[string]any{}),
		},
		{
			Name:        "search_events",
			Description: "날짜 범위나 키워드로 일정을 검색합니다",
			Parameters: object(nil, map[string]any{
				"keyword":   str("검색 키워드"),
				"date_from": str("시작일 YYYY-MM-DD"),
				"date_to":   str("마지막일 YYYY-MM-DD (포함)"),
			}),
		},
		{
			Name:        "navigate",
			Description: "목적지까지 대중교통 길찾기를 시작합니다",
			Parameters: object([]string{"destination"}, map[string]any{
				"destination": str("목적지 이름 또는 주소"),
			}),
		},
	}

	tools := make([]toolDef, len(defs))
	for i, d := range defs {
		tools[i] = toolDef{Type: "function", Function: d}
	}
	return tools
}
