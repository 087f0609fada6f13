package service

import "regexp"

// topic is a coarse conversation subject detected by keyword matching.
// Used only on the suggestion fallback path, when both model calls failed.
type topic string

const (
	topicAnxiety       topic = "anxiety"
	topicDepression    topic = "depression"
	topicSleep         topic = "sleep"
	topicStress        topic = "stress"
	topicRelationships topic = "relationships"
	topicMindfulness   topic = "mindfulness"
	topicWork          topic = "work"
	topicGeneral       topic = "general"
)

// topicOrder fixes match precedence: first match wins
var topicOrder = []topic{
	topicAnxiety,
	topicDepression,
	topicSleep,
	topicStress,
	topicRelationships,
	topicMindfulness,
	topicWork,
}

var topicPatterns = map[topic]*regexp.Regexp{
	topicAnxiety:       regexp.MustCompile(`(?i)\b(anxious|anxiety|panic|worr(y|ied|ying)|nervous|on edge)\b`),
	topicDepression:    regexp.MustCompile(`(?i)\b(depress(ed|ion|ing)?|sad(ness)?|hopeless|empty|numb|crying)\b`),
	topicSleep:         regexp.MustCompile(`(?i)\b(sleep(ing|less)?|insomnia|tired|exhausted|awake|nightmare)\b`),
	topicStress:        regexp.MustCompile(`(?i)\b(stress(ed|ful)?|overwhelm(ed|ing)?|pressure|burn(ed|t)? out|burnout)\b`),
	topicRelationships: regexp.MustCompile(`(?i)\b(relationship|partner|friend(ship)?|family|lonel(y|iness)|breakup|divorce)\b`),
	topicMindfulness:   regexp.MustCompile(`(?i)\b(mindful(ness)?|meditat(e|ion|ing)|breathing|grounding|calm|relax(ation)?)\b`),
	topicWork:          regexp.MustCompile(`(?i)\b(work(load)?|job|boss|career|coworker|colleague|deadline)\b`),
}

// classifyTopic scans the recent conversation text for topic keywords,
// defaulting to general
func classifyTopic(text string) topic {
	for _, t := range topicOrder {
		if topicPatterns[t].MatchString(text) {
			return t
		}
	}
	return topicGeneral
}

// fallbackSuggestions are the static per-topic suggestion sets, phrased in
// first person like the model output they stand in for
var fallbackSuggestions = map[topic][]string{
	topicAnxiety: {
		"My anxiety has been really intense lately.",
		"Can you walk me through a grounding exercise?",
		"What can I do when I feel a panic attack coming?",
		"Why do I feel anxious for no reason?",
		"Help me calm down right now.",
	},
	topicDepression: {
		"I've been feeling really low lately.",
		"Nothing seems to interest me anymore.",
		"How can I find motivation to get through the day?",
		"Is it normal to feel this empty?",
		"What small steps could lift my mood?",
	},
	topicSleep: {
		"I can't fall asleep at night.",
		"My mind races when I try to rest.",
		"What's a good wind-down routine before bed?",
		"Why do I wake up feeling exhausted?",
		"Can you suggest ways to sleep more deeply?",
	},
	topicStress: {
		"I'm feeling completely overwhelmed.",
		"Everything feels like too much right now.",
		"How can I manage my stress better?",
		"What are quick ways to decompress?",
		"Help me prioritize when everything feels urgent.",
	},
	topicRelationships: {
		"I had a fight with someone I care about.",
		"I've been feeling lonely lately.",
		"How do I set boundaries with people?",
		"Why is it hard for me to open up?",
		"Can we talk about my relationship?",
	},
	topicMindfulness: {
		"Tell me about mindfulness techniques.",
		"Can you guide me through a breathing exercise?",
		"How do I start meditating?",
		"What does staying present actually mean?",
		"Help me slow down my thoughts.",
	},
	topicWork: {
		"Work has been draining me lately.",
		"I think I might be burning out.",
		"How do I deal with a difficult boss?",
		"I can't stop thinking about work at home.",
		"Help me find balance between work and rest.",
	},
	topicGeneral: {
		"How are you feeling today?",
		"What's been on your mind lately?",
		"Can you help me with my anxiety?",
		"I've been feeling sad recently.",
		"Tell me about mindfulness techniques.",
	},
}
