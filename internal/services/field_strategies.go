package services

import (
	"context"
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"traqcheck/candidate-onboarding/internal/models"
)

// FieldStrategy proposes values for one field of a resume. Strategies that scan the text
// more than once stop early when ctx is done.
type FieldStrategy interface {
	Field() string
	Extract(ctx context.Context, doc *ResumeText) []Match
}

// Raw confidences per extraction method.
const (
	confidenceEmailStrict    = 0.95
	confidenceEmailLoose     = 0.6
	confidencePhoneIntl      = 0.9
	confidencePhoneLocal     = 0.75
	confidencePhonePlain     = 0.7
	confidenceLabel          = 0.85
	confidenceNameLabel      = 0.9
	confidenceNameHeader     = 0.75
	confidenceAtPhrase       = 0.7
	confidenceCompanySuffix  = 0.65
	confidenceTitleKeyword   = 0.6
	confidenceSkillsSection  = 0.85
	confidenceSkillsKeywords = 0.7
)

// ResumeText is the cleaned text of a resume split into lines, with the offset of each
// line so strategies can report first-seen positions.
type ResumeText struct {
	Text       string
	Lines      []string
	lower      string
	lineStarts []int
}

func NewResumeText(text string) *ResumeText {
	lines := strings.Split(text, "\n")
	starts := make([]int, len(lines))
	offset := 0
	for i, line := range lines {
		starts[i] = offset
		offset += len(line) + 1
	}
	return &ResumeText{Text: text, Lines: lines, lower: strings.ToLower(text), lineStarts: starts}
}

func (d *ResumeText) offset(line, col int) int {
	return d.lineStarts[line] + col
}

// DefaultStrategies returns the strategies in pipeline order.
func DefaultStrategies() []FieldStrategy {
	return []FieldStrategy{
		&NameStrategy{},
		&EmailStrategy{},
		&PhoneStrategy{},
		&CompanyStrategy{},
		&DesignationStrategy{},
		NewSkillsStrategy(DefaultSkillDictionary),
	}
}

var (
	strictEmailPattern = regexp.MustCompile(`(?i)[a-z0-9][a-z0-9._%+\-]*@[a-z0-9](?:[a-z0-9\-]*[a-z0-9])?(?:\.[a-z0-9](?:[a-z0-9\-]*[a-z0-9])?)*\.[a-z]{2,}`)
	strictEmailExact   = regexp.MustCompile(`(?i)^[a-z0-9][a-z0-9._%+\-]*@[a-z0-9](?:[a-z0-9\-]*[a-z0-9])?(?:\.[a-z0-9](?:[a-z0-9\-]*[a-z0-9])?)*\.[a-z]{2,}$`)
	looseEmailPattern  = regexp.MustCompile(`(?i)([a-z0-9][a-z0-9._%+\-]*)\s*[\[\(\{]\s*at\s*[\]\)\}]\s*([a-z0-9\-]+(?:\s*(?:[\[\(\{]\s*dot\s*[\]\)\}]|\.)\s*[a-z0-9\-]+)+)`)
	looseDotPattern    = regexp.MustCompile(`(?i)\s*(?:[\[\(\{]\s*dot\s*[\]\)\}]|\.)\s*`)

	intlPhonePattern  = regexp.MustCompile(`\+\d{1,3}(?:[\s.\-]?\(?\d{1,5}\)?){1,4}`)
	localPhonePattern = regexp.MustCompile(`(?:\(\d{3}\)\s?|\b\d{3}[\s.\-])\d{3}[\s.\-]\d{4}\b`)
	plainPhonePattern = regexp.MustCompile(`\b\d{10}\b`)

	nameLabelPattern        = regexp.MustCompile(`(?i)^(?:full\s+)?name\s*[:\-–]\s*(.+)$`)
	companyLabelPattern     = regexp.MustCompile(`(?i)^(?:current\s+)?(?:company|employer|organi[sz]ation)\s*[:\-–]\s*(.+)$`)
	designationLabelPattern = regexp.MustCompile(`(?i)^(?:current\s+)?(?:designation|job\s+title|title|position|role)\s*[:\-–]\s*(.+)$`)
	atPhrasePattern         = regexp.MustCompile(`^(.{2,80}?)\s+(?:at|@)\s+(.{2,80})$`)
	titleKeywordPattern     = regexp.MustCompile(`(?i)\b(?:engineer|developer|manager|analyst|designer|consultant|architect|scientist|lead|intern|director|administrator|specialist|officer|executive|programmer|tester|associate|coordinator|recruiter|accountant|founder|co-founder|cto|ceo|cfo|vp|head)\b`)
	companySuffixPattern    = regexp.MustCompile(`(?i)\b(?:inc|corp|corporation|ltd|limited|llc|llp|gmbh|plc|technologies|technology|solutions|labs|systems|pvt|software|consulting|consultancy|services|group|industries|enterprises|company)\.?$`)
	yearPattern             = regexp.MustCompile(`\b(?:19|20)\d{2}\b`)
	bulletPrefix            = regexp.MustCompile(`^[\s\-*•▪◦·>]+`)
	segmentSeparators       = regexp.MustCompile(`[,|•·;\t]`)
	skillsHeadingPattern    = regexp.MustCompile(`(?i)^(?:technical\s+|key\s+|core\s+|professional\s+)?(?:skills|skill\s+set|skillset|competencies|technologies|tech\s+stack)\b\s*[:\-–]?\s*(.*)$`)
)

var sectionWords = map[string]bool{
	"resume": true, "curriculum": true, "vitae": true, "cv": true, "summary": true,
	"profile": true, "objective": true, "experience": true, "education": true,
	"skills": true, "projects": true, "contact": true, "certifications": true,
	"languages": true, "references": true, "work": true, "employment": true,
	"history": true, "achievements": true, "personal": true, "details": true,
	"about": true, "professional": true, "technical": true, "interests": true,
}

type EmailStrategy struct{}

func (s *EmailStrategy) Field() string { return models.FieldEmail }

func (s *EmailStrategy) Extract(_ context.Context, doc *ResumeText) []Match {
	var matches []Match
	for _, found := range strictEmailPattern.FindAllString(doc.Text, -1) {
		email := strings.ToLower(found)
		matches = append(matches, Match{Value: email, Confidence: confidenceEmailStrict})
	}
	for _, groups := range looseEmailPattern.FindAllStringSubmatch(doc.Text, -1) {
		email := strings.ToLower(groups[1] + "@" + looseDotPattern.ReplaceAllString(groups[2], "."))
		if !strictEmailExact.MatchString(email) {
			continue
		}
		matches = append(matches, Match{Value: email, Confidence: confidenceEmailLoose})
	}
	return matches
}

type PhoneStrategy struct{}

func (s *PhoneStrategy) Field() string { return models.FieldPhone }

func (s *PhoneStrategy) Extract(_ context.Context, doc *ResumeText) []Match {
	var (
		matches []Match
		taken   [][]int
	)
	add := func(text string, loc []int, confidence float64) {
		for _, span := range taken {
			if loc[0] < span[1] && span[0] < loc[1] {
				return
			}
		}
		value := strings.TrimSpace(text[loc[0]:loc[1]])
		digits := onlyDigits(value)
		if len(digits) < 7 || len(digits) > 15 {
			return
		}
		taken = append(taken, loc)
		matches = append(matches, Match{Value: value, Key: phoneKey(digits), Confidence: confidence})
	}

	for _, loc := range intlPhonePattern.FindAllStringIndex(doc.Text, -1) {
		add(doc.Text, loc, confidencePhoneIntl)
	}
	for _, loc := range localPhonePattern.FindAllStringIndex(doc.Text, -1) {
		add(doc.Text, loc, confidencePhoneLocal)
	}
	for _, loc := range plainPhonePattern.FindAllStringIndex(doc.Text, -1) {
		add(doc.Text, loc, confidencePhonePlain)
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return firstIndex(doc.Text, matches[i].Value) < firstIndex(doc.Text, matches[j].Value)
	})
	return matches
}

// phoneKey compares numbers on their national part so "+1 555 123 4567" and
// "(555) 123-4567" agree.
func phoneKey(digits string) string {
	if len(digits) > 10 {
		return digits[len(digits)-10:]
	}
	return digits
}

type NameStrategy struct{}

func (s *NameStrategy) Field() string { return models.FieldName }

func (s *NameStrategy) Extract(_ context.Context, doc *ResumeText) []Match {
	var matches []Match
	for _, value := range labelValues(doc, nameLabelPattern) {
		if looksLikeName(value) {
			matches = append(matches, Match{Value: value, Confidence: confidenceNameLabel})
		}
	}

	seen := 0
	for _, line := range doc.Lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		seen++
		if seen > 5 {
			break
		}
		lower := strings.ToLower(line)
		if strings.Contains(lower, "resume") || strings.Contains(lower, "curriculum vitae") {
			continue
		}
		if nameLabelPattern.MatchString(line) {
			continue
		}
		first := cleanValue(segmentSeparators.Split(line, 2)[0])
		if looksLikeName(first) {
			matches = append(matches, Match{Value: first, Confidence: confidenceNameHeader})
			break
		}
	}
	return matches
}

type CompanyStrategy struct{}

func (s *CompanyStrategy) Field() string { return models.FieldCompany }

func (s *CompanyStrategy) Extract(_ context.Context, doc *ResumeText) []Match {
	var matches []Match
	for _, value := range labelValues(doc, companyLabelPattern) {
		if value = cutCompany(value); value != "" {
			matches = append(matches, Match{Value: value, Confidence: confidenceLabel})
		}
	}
	if _, company, ok := firstAtPhrase(doc); ok {
		matches = append(matches, Match{Value: company, Confidence: confidenceAtPhrase})
	}
	for _, segment := range shortSegments(doc) {
		if companySuffixPattern.MatchString(segment) && !titleKeywordPattern.MatchString(segment) {
			matches = append(matches, Match{Value: segment, Confidence: confidenceCompanySuffix})
			break
		}
	}
	return matches
}

type DesignationStrategy struct{}

func (s *DesignationStrategy) Field() string { return models.FieldDesignation }

func (s *DesignationStrategy) Extract(_ context.Context, doc *ResumeText) []Match {
	var matches []Match
	for _, value := range labelValues(doc, designationLabelPattern) {
		if value = cutCompany(value); value != "" {
			matches = append(matches, Match{Value: value, Confidence: confidenceLabel})
		}
	}
	if title, _, ok := firstAtPhrase(doc); ok {
		matches = append(matches, Match{Value: title, Confidence: confidenceAtPhrase})
	}
	for _, segment := range shortSegments(doc) {
		if titleKeywordPattern.MatchString(segment) && !companySuffixPattern.MatchString(segment) {
			matches = append(matches, Match{Value: segment, Confidence: confidenceTitleKeyword})
			break
		}
	}
	return matches
}

// Skill is one dictionary entry. Short or common words are matched case-sensitively.
type Skill struct {
	Name          string
	CaseSensitive bool
}

var DefaultSkillDictionary = []Skill{
	{Name: "Go", CaseSensitive: true}, {Name: "Golang"}, {Name: "Python"}, {Name: "Java"},
	{Name: "JavaScript"}, {Name: "TypeScript"}, {Name: "C++"}, {Name: "C#"}, {Name: "Ruby"},
	{Name: "PHP"}, {Name: "Rust", CaseSensitive: true}, {Name: "Kotlin"},
	{Name: "Swift", CaseSensitive: true}, {Name: "Scala"}, {Name: "SQL", CaseSensitive: true},
	{Name: "React"}, {Name: "Angular"}, {Name: "Vue.js"}, {Name: "Node.js"},
	{Name: "Express", CaseSensitive: true}, {Name: "Django"}, {Name: "Flask"},
	{Name: "Spring Boot"}, {Name: ".NET"}, {Name: "HTML"}, {Name: "CSS"}, {Name: "Docker"},
	{Name: "Kubernetes"}, {Name: "Terraform"}, {Name: "Ansible"}, {Name: "Jenkins"},
	{Name: "Git"}, {Name: "GitHub"}, {Name: "GitLab"}, {Name: "CI/CD"},
	{Name: "AWS", CaseSensitive: true}, {Name: "Azure"}, {Name: "GCP", CaseSensitive: true},
	{Name: "Google Cloud"}, {Name: "Linux"}, {Name: "PostgreSQL"}, {Name: "MySQL"},
	{Name: "MongoDB"}, {Name: "Redis"}, {Name: "Kafka"}, {Name: "RabbitMQ"},
	{Name: "Elasticsearch"}, {Name: "GraphQL"}, {Name: "REST", CaseSensitive: true},
	{Name: "gRPC"}, {Name: "Microservices"}, {Name: "Machine Learning"},
	{Name: "Deep Learning"}, {Name: "Data Science"}, {Name: "NLP", CaseSensitive: true},
	{Name: "TensorFlow"}, {Name: "PyTorch"}, {Name: "Pandas"}, {Name: "NumPy"},
	{Name: "Spark", CaseSensitive: true}, {Name: "Hadoop"}, {Name: "Tableau"},
	{Name: "Power BI"}, {Name: "Excel", CaseSensitive: true}, {Name: "Agile"},
	{Name: "Scrum"}, {Name: "Jira"}, {Name: "Figma"}, {Name: "Selenium"}, {Name: "DevOps"},
}

type SkillsStrategy struct {
	dictionary []Skill
}

func NewSkillsStrategy(dictionary []Skill) *SkillsStrategy {
	return &SkillsStrategy{dictionary: dictionary}
}

func (s *SkillsStrategy) Field() string { return models.FieldSkills }

type positionedSkill struct {
	pos  int
	name string
}

func (s *SkillsStrategy) Extract(ctx context.Context, doc *ResumeText) []Match {
	found := s.sectionSkills(doc)
	fromSection := len(found) > 0

	for _, skill := range s.dictionary {
		if ctx.Err() != nil {
			return nil
		}
		if pos := findSkill(ctx, doc, skill); pos >= 0 {
			found = append(found, positionedSkill{pos: pos, name: skill.Name})
		}
	}
	if len(found) == 0 {
		return nil
	}

	sort.SliceStable(found, func(i, j int) bool { return found[i].pos < found[j].pos })

	seen := make(map[string]bool, len(found))
	skills := make([]string, 0, len(found))
	for _, f := range found {
		key := strings.ToLower(f.name)
		if seen[key] {
			continue
		}
		seen[key] = true
		skills = append(skills, f.name)
	}

	confidence := confidenceSkillsKeywords
	if fromSection {
		confidence = confidenceSkillsSection
	}
	return []Match{{Values: skills, Confidence: confidence}}
}

// sectionSkills reads the items listed after a "Skills" heading, either on the same line
// or on the following lines up to the next blank line or heading.
func (s *SkillsStrategy) sectionSkills(doc *ResumeText) []positionedSkill {
	var items []positionedSkill
	for i, line := range doc.Lines {
		groups := skillsHeadingPattern.FindStringSubmatch(strings.TrimSpace(line))
		if groups == nil {
			continue
		}
		if rest := strings.TrimSpace(groups[1]); rest != "" {
			items = append(items, splitSkillItems(doc, i, line)...)
			continue
		}
		for j := i + 1; j < len(doc.Lines) && j <= i+15; j++ {
			next := strings.TrimSpace(doc.Lines[j])
			if next == "" || isHeading(next) {
				break
			}
			items = append(items, splitSkillItems(doc, j, doc.Lines[j])...)
		}
	}
	return items
}

func splitSkillItems(doc *ResumeText, lineIndex int, line string) []positionedSkill {
	body := line
	col := 0
	if idx := strings.LastIndex(body, ":"); idx >= 0 {
		col = idx + 1
		body = body[idx+1:]
	}

	var items []positionedSkill
	for _, raw := range segmentSeparators.Split(body, -1) {
		item := strings.TrimSuffix(cleanValue(bulletPrefix.ReplaceAllString(raw, "")), ".")
		if item == "" || len(item) > 40 || len(strings.Fields(item)) > 4 {
			continue
		}
		pos := doc.offset(lineIndex, col+strings.Index(body, raw))
		items = append(items, positionedSkill{pos: pos, name: item})
	}
	return items
}

func isHeading(line string) bool {
	trimmed := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(line), ":"))
	words := strings.Fields(strings.ToLower(trimmed))
	if len(words) == 0 || len(words) > 3 {
		return false
	}
	if strings.HasSuffix(strings.TrimSpace(line), ":") {
		return true
	}
	for _, w := range words {
		if sectionWords[w] {
			return true
		}
	}
	return false
}

// findSkillCheckEvery is how many rejected hits findSkill scans between context checks.
const findSkillCheckEvery = 1024

// findSkill returns the first position of the skill delimited by non-alphanumerics, or -1.
// Case-insensitive entries search the lowercased text; positions are only used for ordering.
func findSkill(ctx context.Context, doc *ResumeText, skill Skill) int {
	haystack, needle := doc.Text, skill.Name
	if !skill.CaseSensitive {
		haystack, needle = doc.lower, strings.ToLower(skill.Name)
	}
	if needle == "" {
		return -1
	}
	start := 0
	for hits := 1; ; hits++ {
		idx := strings.Index(haystack[start:], needle)
		if idx < 0 {
			return -1
		}
		pos := start + idx
		end := pos + len(needle)
		if !alnumBefore(haystack, pos) && !alnumAfter(haystack, end) {
			return pos
		}
		if hits%findSkillCheckEvery == 0 && ctx.Err() != nil {
			return -1
		}
		start = pos + 1
	}
}

// alnumBefore reports whether the rune ending at byte i is a letter or digit.
func alnumBefore(s string, i int) bool {
	if i <= 0 {
		return false
	}
	r, _ := utf8.DecodeLastRuneInString(s[:i])
	return isAlnum(r)
}

// alnumAfter reports whether the rune starting at byte i is a letter or digit.
func alnumAfter(s string, i int) bool {
	if i >= len(s) {
		return false
	}
	r, _ := utf8.DecodeRuneInString(s[i:])
	return isAlnum(r)
}

func isAlnum(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

func labelValues(doc *ResumeText, pattern *regexp.Regexp) []string {
	var values []string
	for _, line := range doc.Lines {
		line = bulletPrefix.ReplaceAllString(strings.TrimSpace(line), "")
		if groups := pattern.FindStringSubmatch(line); groups != nil {
			if value := cleanValue(groups[1]); value != "" {
				values = append(values, value)
			}
		}
	}
	return values
}

// firstAtPhrase finds the first "<title> at <company>" line.
func firstAtPhrase(doc *ResumeText) (string, string, bool) {
	for _, line := range doc.Lines {
		line = bulletPrefix.ReplaceAllString(strings.TrimSpace(line), "")
		if strings.Contains(line, ":") {
			continue
		}
		groups := atPhrasePattern.FindStringSubmatch(line)
		if groups == nil {
			continue
		}
		title := cleanValue(groups[1])
		if !titleKeywordPattern.MatchString(title) || len(strings.Fields(title)) > 8 {
			continue
		}
		company := cutCompany(groups[2])
		if company == "" {
			continue
		}
		if first := []rune(company)[0]; !unicode.IsUpper(first) && !unicode.IsDigit(first) {
			continue
		}
		return title, company, true
	}
	return "", "", false
}

// shortSegments returns separator-delimited pieces of lines that can hold a bare company
// or title, skipping labels, contact details, dates and sentences.
func shortSegments(doc *ResumeText) []string {
	var segments []string
	for _, line := range doc.Lines {
		for _, raw := range segmentSeparators.Split(line, -1) {
			segment := cleanValue(bulletPrefix.ReplaceAllString(raw, ""))
			if segment == "" || strings.ContainsAny(segment, ":@()") {
				continue
			}
			if strings.Contains(" "+segment+" ", " at ") || strings.IndexFunc(segment, unicode.IsDigit) >= 0 {
				continue
			}
			if n := len(strings.Fields(segment)); n == 0 || n > 6 {
				continue
			}
			segments = append(segments, segment)
		}
	}
	return segments
}

func cutCompany(s string) string {
	for _, sep := range []string{"(", " - ", " – ", " | ", ",", " from ", " since "} {
		if idx := strings.Index(s, sep); idx >= 0 {
			s = s[:idx]
		}
	}
	if loc := yearPattern.FindStringIndex(s); loc != nil {
		s = s[:loc[0]]
	}
	return cleanValue(s)
}

func cleanValue(s string) string {
	return strings.Trim(strings.Join(strings.Fields(s), " "), " .,;:-–|•")
}

func looksLikeName(s string) bool {
	tokens := strings.Fields(s)
	if len(tokens) < 2 || len(tokens) > 4 {
		return false
	}
	for _, token := range tokens {
		runes := []rune(token)
		if !unicode.IsUpper(runes[0]) {
			return false
		}
		for _, r := range runes {
			if !unicode.IsLetter(r) && r != '.' && r != '\'' && r != '-' {
				return false
			}
		}
		lower := strings.ToLower(strings.Trim(token, ".'-"))
		if sectionWords[lower] {
			return false
		}
	}
	return !titleKeywordPattern.MatchString(s) && !companySuffixPattern.MatchString(s)
}

func onlyDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func firstIndex(text, value string) int {
	if idx := strings.Index(text, value); idx >= 0 {
		return idx
	}
	return len(text)
}
