package analyzer

import (
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/todmy/botcheck/pkg/models"
)

var trailingDigitsRE = regexp.MustCompile(`\d{4,}$`)

// ProfileAnalyzer scores account metadata: fresh accounts, default avatars,
// generated-looking usernames and empty presence all lean bot.
type ProfileAnalyzer struct {
	randomNameThreshold float64
	now                 func() time.Time
}

// NewProfileAnalyzer creates a new ProfileAnalyzer.
func NewProfileAnalyzer() *ProfileAnalyzer {
	return &ProfileAnalyzer{
		randomNameThreshold: 0.6,
		now:                 time.Now,
	}
}

// Analyze returns the profile axis score. Weights: age 0.25, avatar 0.20,
// username 0.25, status 0.15, custom status 0.15. An absent or empty
// profile is neutral.
func (a *ProfileAnalyzer) Analyze(profile *models.Profile) AxisResult {
	details := map[string]float64{}
	if profile.Empty() {
		return AxisResult{Score: neutralScore, Details: details}
	}

	ageScore := a.accountAgeScore(profile)
	avatarScore := a.avatarScore(profile)
	nameScore := a.usernameScore(profile)
	statusScore := a.statusScore(profile)
	customStatusScore := a.customStatusScore(profile)

	score := clamp(ageScore*0.25 + avatarScore*0.20 + nameScore*0.25 +
		statusScore*0.15 + customStatusScore*0.15)

	details["account_age"] = round2(ageScore)
	details["avatar"] = round2(avatarScore)
	details["username_pattern"] = round2(nameScore)
	details["status"] = round2(statusScore)
	details["custom_status"] = round2(customStatusScore)

	return AxisResult{Score: score, Details: details}
}

func (a *ProfileAnalyzer) accountAgeScore(profile *models.Profile) float64 {
	if profile.CreatedAt == nil {
		return neutralScore
	}

	ageDays := a.now().Sub(time.Unix(*profile.CreatedAt, 0)).Hours() / 24

	switch {
	case ageDays < 1:
		return 95.0
	case ageDays < 7:
		return 80.0
	case ageDays < 30:
		return 60.0
	case ageDays < 90:
		return 40.0
	case ageDays < 365:
		return 25.0
	default:
		return 10.0
	}
}

func (a *ProfileAnalyzer) avatarScore(profile *models.Profile) float64 {
	if profile.Avatar == "" {
		return 75.0 // default avatar
	}
	return 15.0
}

// usernameScore blends a randomness heuristic with digit-ratio thresholds
// and a trailing digit-run check.
func (a *ProfileAnalyzer) usernameScore(profile *models.Profile) float64 {
	username := profile.Username
	if username == "" {
		return neutralScore
	}

	var scores []float64

	randomness := usernameRandomness(username)
	if randomness > a.randomNameThreshold {
		scores = append(scores, 70+(randomness-a.randomNameThreshold)*75)
	} else {
		scores = append(scores, 20.0)
	}

	runes := []rune(username)
	digits := 0
	for _, r := range runes {
		if unicode.IsDigit(r) {
			digits++
		}
	}
	digitRatio := float64(digits) / float64(len(runes))
	switch {
	case digitRatio > 0.5:
		scores = append(scores, 75.0)
	case digitRatio > 0.3:
		scores = append(scores, 55.0)
	default:
		scores = append(scores, 20.0)
	}

	if trailingDigitsRE.MatchString(username) {
		scores = append(scores, 70.0)
	} else {
		scores = append(scores, 25.0)
	}

	var sum float64
	for _, s := range scores {
		sum += s
	}
	return clamp(sum / float64(len(scores)))
}

// usernameRandomness estimates how generated a name looks, in [0,1]. It
// combines unique-character ratio, consonant/vowel transition balance and a
// no-repeated-characters bonus.
func usernameRandomness(text string) float64 {
	runes := []rune(text)
	if len(runes) < 3 {
		return 0.5
	}

	isVowel := func(r rune) bool {
		return strings.ContainsRune("aeiouAEIOU", r)
	}

	transitions := 0
	alphaChars := 0
	for i, r := range runes {
		if unicode.IsLetter(r) {
			alphaChars++
		}
		if i == 0 {
			continue
		}
		if unicode.IsLetter(r) && unicode.IsLetter(runes[i-1]) {
			if isVowel(r) != isVowel(runes[i-1]) {
				transitions++
			}
		}
	}
	if alphaChars < 2 {
		return 0.5
	}
	transitionRatio := float64(transitions) / float64(alphaChars-1)

	hasRepeats := false
	for i := 1; i < len(runes); i++ {
		if runes[i] == runes[i-1] {
			hasRepeats = true
			break
		}
	}

	unique := make(map[rune]struct{}, len(runes))
	for _, r := range runes {
		unique[unicode.ToLower(r)] = struct{}{}
	}
	uniqueRatio := float64(len(unique)) / float64(len(runes))

	diff := transitionRatio - 0.5
	if diff < 0 {
		diff = -diff
	}
	randomness := uniqueRatio*0.5 + (1-diff)*0.3
	if !hasRepeats && len(runes) > 8 {
		randomness += 0.2
	}
	if randomness > 1 {
		randomness = 1
	}
	return randomness
}

func (a *ProfileAnalyzer) statusScore(profile *models.Profile) float64 {
	if profile.Status == "" && !profile.HasActivities {
		return 65.0
	}
	if profile.HasActivities {
		return 15.0
	}
	switch profile.Status {
	case "online", "idle", "dnd":
		return 35.0
	default:
		return neutralScore
	}
}

func (a *ProfileAnalyzer) customStatusScore(profile *models.Profile) float64 {
	if profile.CustomStatus != "" {
		return 10.0
	}
	return 60.0
}
