package category

// The taxonomy is a closed two-level structure: a fixed set of domains, each
// with a fixed set of sub-domains, each populated by keyword strings. It is
// configuration loaded once and immutable at runtime. Keywords may appear in
// several sub-domains; the matcher scores them by specificity (1/occurrences),
// so distinctive keywords carry more weight than shared ones.
var baseDomainKeywords = map[string]map[string][]string{
	"health_and_fitness": {
		"physical_health": {
			"gym", "workout", "exercise", "running", "cardio", "strength",
			"squat", "endurance", "marathon", "yoga", "stretching", "training",
			"fitness", "cycling", "swimming",
		},
		"mental_wellness": {
			"meditation", "mindfulness", "stress", "anxiety", "therapy",
			"journaling", "gratitude", "wellbeing", "burnout", "self-care",
		},
		"nutrition_and_sleep": {
			"nutrition", "diet", "protein", "calories", "meal prep", "fasting",
			"sleep", "hydration", "vitamins", "weight loss",
		},
	},
	"technology_and_computing": {
		"software_and_web_dev": {
			"coding", "programming", "software", "web", "frontend", "backend",
			"app", "api", "javascript", "python", "golang", "database",
			"open source", "debugging",
		},
		"emerging_tech_and_ai": {
			"ai", "machine learning", "deep learning", "llm", "neural network",
			"data science", "robotics", "blockchain", "training", "model",
			"computer vision", "nlp",
		},
		"infrastructure_and_security": {
			"devops", "cloud", "kubernetes", "docker", "linux", "networking",
			"security", "encryption", "penetration testing", "sysadmin",
			"terraform", "monitoring",
		},
	},
	"business_and_finance": {
		"business_strategy": {
			"startup", "business", "strategy", "entrepreneurship", "marketing",
			"sales", "product", "leadership", "management", "negotiation",
			"branding",
		},
		"personal_finance_and_investing": {
			"investing", "stocks", "budget", "savings", "crypto", "dividends",
			"real estate", "retirement", "portfolio", "frugality",
		},
		"career_and_economics": {
			"career", "resume", "interview", "promotion", "networking",
			"freelancing", "economics", "job search", "salary", "mentorship",
		},
	},
	"education_and_learning": {
		"academic_and_exam_prep": {
			"exam", "studying", "university", "college", "gre", "sat",
			"thesis", "homework", "coursework", "certification", "degree",
		},
		"language_and_communication": {
			"language", "spanish", "french", "japanese", "english", "writing",
			"speaking", "vocabulary", "grammar", "public speaking",
			"communication",
		},
		"personal_growth": {
			"habits", "productivity", "discipline", "reading", "learning",
			"self improvement", "goal setting", "time management", "focus",
			"motivation",
		},
	},
	"creative_arts_and_hobbies": {
		"arts_and_creation": {
			"drawing", "painting", "photography", "design", "writing",
			"sculpting", "crafting", "animation", "illustration", "pottery",
		},
		"performance_and_play": {
			"music", "guitar", "piano", "singing", "dancing", "acting",
			"gaming", "chess", "theater", "improv",
		},
		"collection_and_curation": {
			"collecting", "vinyl", "stamps", "antiques", "curation",
			"archiving", "trading cards", "memorabilia",
		},
	},
	"lifestyle_community_and_adventure": {
		"home_and_personal_life": {
			"cooking", "baking", "gardening", "organization", "minimalism",
			"parenting", "diy", "home improvement", "cleaning",
		},
		"social_and_community": {
			"volunteering", "community", "friends", "family", "networking",
			"events", "meetup", "charity", "mentoring",
		},
		"travel_and_adventure": {
			"travel", "hiking", "camping", "backpacking", "climbing",
			"adventure", "exploring", "road trip", "kayaking", "surfing",
		},
	},
	"science_and_research": {
		"scientific_fields": {
			"physics", "chemistry", "biology", "astronomy", "mathematics",
			"geology", "neuroscience", "genetics", "ecology",
		},
		"research_process_and_tools": {
			"research", "experiment", "data analysis", "statistics",
			"publication", "peer review", "lab", "methodology", "literature review",
		},
	},
}

// Domains returns the domain names of the taxonomy.
func Domains() []string {
	out := make([]string, 0, len(baseDomainKeywords))
	for d := range baseDomainKeywords {
		out = append(out, d)
	}
	return out
}

// SubDomains returns the sub-domain names of one domain, or nil for an
// unknown domain.
func SubDomains(domain string) []string {
	subs, ok := baseDomainKeywords[domain]
	if !ok {
		return nil
	}
	out := make([]string, 0, len(subs))
	for s := range subs {
		out = append(out, s)
	}
	return out
}
