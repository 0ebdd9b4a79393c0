package extraction

const transcriptPrompt = `이 성적표에서 과목 정보를 추출해서 JSON 형식으로 반환해주세요:
- 과목명 (title): 과목 이름
- 학수번호 (courseCode): 영문 학과 코드 + 숫자 (예: "CS101")
- 성적 (grade): A+, A, B+, B, C+, C, D+, D, F, P 중 하나
- 이수구분 (category): "전공" 또는 "교양"

응답은 반드시 다음 형식의 JSON 객체로 반환해주세요 (courses 키에 배열 포함):
{
  "courses": [
    {
      "title": "과목명",
      "courseCode": "CS101",
      "grade": "A+",
      "category": "전공"
    }
  ]
}

성적표에 있는 모든 과목을 정확하게 추출해주세요.`

const transcriptTextPrompt = `아래는 성적표에서 추출한 텍스트입니다. 과목 정보를 JSON 형식으로 반환해주세요:
- 과목명 (title), 학수번호 (courseCode), 성적 (grade: A+, A, B+, B, C+, C, D+, D, F, P), 이수구분 (category: "전공" 또는 "교양")

응답은 반드시 {"courses": [...]} 형식의 JSON 객체로 반환해주세요.

성적표 텍스트:
`

const timetablePrompt = `이 시간표 이미지를 분석해서 다음 정보를 JSON 형식으로 추출해주세요:
- 과목명 (name): 강의 과목 이름
- 강의실 (room): 강의실 번호 또는 위치
- 요일 (dayOfWeek): 월, 화, 수, 목, 금 중 하나 또는 여러 개 (한글로 반환)
- 시작 시간 (startTime): HH:MM 형식 (예: "09:00")
- 종료 시간 (endTime): HH:MM 형식 (예: "10:30")

중요 사항:
- 하나의 강의가 여러 요일에 걸쳐 있으면, 하나의 강의 객체에 dayOfWeek를 배열로 포함해주세요.
- 같은 과목명, 같은 강의실, 같은 시간대인 경우 하나의 강의로 묶어주세요.

응답은 반드시 다음 형식의 JSON 객체로 반환해주세요 (lectures 키에 배열 포함):
{
  "lectures": [
    {
      "name": "과목명",
      "room": "강의실",
      "dayOfWeek": ["월", "수"],
      "startTime": "09:00",
      "endTime": "10:30"
    }
  ]
}

dayOfWeek는 단일 요일이면 문자열로, 여러 요일이면 문자열 배열로 반환해주세요.
시간표에 있는 모든 강의를 정확하게 추출해주세요.`
