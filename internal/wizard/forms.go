package wizard

import "strings"

// Storage keys shared with the web client's local storage.
const (
	KeyUSP     = "dropskills_usp_form_data"
	KeyTunnel  = "dropskills_tunnel_form_data"
	KeyEmail   = "dropskills_email_form_data"
	KeyContent = "dropskills_content_form_data"
	KeyVeille  = "dropskills_veille_form_data"
)

type USPFormData struct {
	ProductName        string   `json:"productName"`
	ProductDescription string   `json:"productDescription"`
	TargetAudience     string   `json:"targetAudience"`
	PainPoints         []string `json:"painPoints"`
	Competitors        []string `json:"competitors"`
	Differentiators    []string `json:"differentiators"`
	Tone               string   `json:"tone"`
	IncludeGuarantee   bool     `json:"includeGuarantee"`
}

type TunnelFormData struct {
	ProductName    string   `json:"productName"`
	ProductType    string   `json:"productType"`
	Price          int      `json:"price"`
	TargetAudience string   `json:"targetAudience"`
	TrafficSources []string `json:"trafficSources"`
	Goal           string   `json:"goal"`
	HasUpsell      bool     `json:"hasUpsell"`
	UpsellOffer    string   `json:"upsellOffer"`
	HasEmailList   bool     `json:"hasEmailList"`
}

type EmailFormData struct {
	ProductName    string   `json:"productName"`
	TargetAudience string   `json:"targetAudience"`
	SequenceType   string   `json:"sequenceType"`
	EmailCount     int      `json:"emailCount"`
	MainGoal       string   `json:"mainGoal"`
	CallToAction   string   `json:"callToAction"`
	Tone           string   `json:"tone"`
	SenderName     string   `json:"senderName"`
	KeyBenefits    []string `json:"keyBenefits"`
}

type ContentFormData struct {
	Niche          string   `json:"niche"`
	TargetAudience string   `json:"targetAudience"`
	Platforms      []string `json:"platforms"`
	PostsPerWeek   int      `json:"postsPerWeek"`
	Weeks          int      `json:"weeks"`
	ContentPillars []string `json:"contentPillars"`
	Tone           string   `json:"tone"`
	Goals          []string `json:"goals"`
	StartDate      string   `json:"startDate"`
}

type VeilleFormData struct {
	Industry      string   `json:"industry"`
	Keywords      []string `json:"keywords"`
	Competitors   []string `json:"competitors"`
	Sources       []string `json:"sources"`
	Frequency     string   `json:"frequency"`
	AlertTopics   []string `json:"alertTopics"`
	IncludeTrends bool     `json:"includeTrends"`
}

type ICPFormData struct {
	ProductDescription string `json:"productDescription"`
	Niche              string `json:"niche"`
	Market             string `json:"market"`
	PriceRange         string `json:"priceRange"`
}

type OfferFormData struct {
	ProductName    string `json:"productName"`
	TargetAudience string `json:"targetAudience"`
	Price          int    `json:"price"`
	Transformation string `json:"transformation"`
}

type TitlesFormData struct {
	Topic  string `json:"topic"`
	Format string `json:"format"`
	Count  int    `json:"count"`
}

type ContentSystemFormData struct {
	Niche        string   `json:"niche"`
	Platforms    []string `json:"platforms"`
	HoursPerWeek int      `json:"hoursPerWeek"`
}

// ICPResult is the part of an ICP generation used to pre-fill other wizards.
type ICPResult struct {
	Persona struct {
		Name        string `json:"name"`
		Age         string `json:"age"`
		Occupation  string `json:"occupation"`
		Description string `json:"description"`
	} `json:"persona"`
	PainPoints []string `json:"painPoints"`
	Desires    []string `json:"desires"`
	Objections []string `json:"objections"`
	Channels   []string `json:"channels"`
}

// Audience summarises the persona in one line.
func (r ICPResult) Audience() string {
	if d := strings.TrimSpace(r.Persona.Description); d != "" {
		return d
	}
	var parts []string
	for _, s := range []string{r.Persona.Name, r.Persona.Age, r.Persona.Occupation} {
		if s = strings.TrimSpace(s); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, ", ")
}

func fillString(dst *string, v string) {
	if strings.TrimSpace(*dst) == "" {
		*dst = v
	}
}

func fillList(dst *[]string, v []string) {
	if len(*dst) == 0 && len(v) > 0 {
		*dst = append([]string(nil), v...)
	}
}

var USP = register(&Definition[USPFormData]{
	kind:       "usp",
	storageKey: KeyUSP,
	steps: []Step[USPFormData]{
		{Title: "Votre produit", Fields: []string{"productName", "productDescription"}, Rules: []Rule[USPFormData]{
			Required("productName", func(d *USPFormData) string { return d.ProductName }),
			Required("productDescription", func(d *USPFormData) string { return d.ProductDescription }),
		}},
		{Title: "Votre audience", Fields: []string{"targetAudience", "painPoints"}, Rules: []Rule[USPFormData]{
			Required("targetAudience", func(d *USPFormData) string { return d.TargetAudience }),
			RequiredList("painPoints", func(d *USPFormData) []string { return d.PainPoints }),
		}},
		{Title: "Votre différence", Fields: []string{"competitors", "differentiators"}, Rules: []Rule[USPFormData]{
			RequiredList("differentiators", func(d *USPFormData) []string { return d.Differentiators }),
		}},
		{Title: "Ton et style", Fields: []string{"tone", "includeGuarantee"}, Rules: []Rule[USPFormData]{
			Required("tone", func(d *USPFormData) string { return d.Tone }),
		}},
	},
	prefill: func(d *USPFormData, icp ICPResult) {
		fillString(&d.TargetAudience, icp.Audience())
		fillList(&d.PainPoints, icp.PainPoints)
	},
})

var Tunnel = register(&Definition[TunnelFormData]{
	kind:       "tunnel",
	storageKey: KeyTunnel,
	steps: []Step[TunnelFormData]{
		{Title: "Votre produit", Fields: []string{"productName", "productType"}, Rules: []Rule[TunnelFormData]{
			Required("productName", func(d *TunnelFormData) string { return d.ProductName }),
			Required("productType", func(d *TunnelFormData) string { return d.ProductType }),
		}},
		{Title: "Prix et audience", Fields: []string{"price", "targetAudience"}, Rules: []Rule[TunnelFormData]{
			IntRange("price", func(d *TunnelFormData) int { return d.Price }, 1, 100000),
			Required("targetAudience", func(d *TunnelFormData) string { return d.TargetAudience }),
		}},
		{Title: "Trafic et objectif", Fields: []string{"trafficSources", "goal"}, Rules: []Rule[TunnelFormData]{
			RequiredList("trafficSources", func(d *TunnelFormData) []string { return d.TrafficSources }),
			Required("goal", func(d *TunnelFormData) string { return d.Goal }),
		}},
		{Title: "Options", Fields: []string{"hasUpsell", "upsellOffer", "hasEmailList"}},
	},
	prefill: func(d *TunnelFormData, icp ICPResult) {
		fillString(&d.TargetAudience, icp.Audience())
	},
})

var Email = register(&Definition[EmailFormData]{
	kind:       "emails",
	storageKey: KeyEmail,
	steps: []Step[EmailFormData]{
		{Title: "Contexte", Fields: []string{"productName", "targetAudience"}, Rules: []Rule[EmailFormData]{
			Required("productName", func(d *EmailFormData) string { return d.ProductName }),
			Required("targetAudience", func(d *EmailFormData) string { return d.TargetAudience }),
		}},
		{Title: "Séquence", Fields: []string{"sequenceType", "emailCount"}, Rules: []Rule[EmailFormData]{
			Required("sequenceType", func(d *EmailFormData) string { return d.SequenceType }),
			IntRange("emailCount", func(d *EmailFormData) int { return d.EmailCount }, 3, 15),
		}},
		{Title: "Objectif", Fields: []string{"mainGoal", "callToAction", "keyBenefits"}, Rules: []Rule[EmailFormData]{
			Required("mainGoal", func(d *EmailFormData) string { return d.MainGoal }),
			Required("callToAction", func(d *EmailFormData) string { return d.CallToAction }),
		}},
		{Title: "Style", Fields: []string{"tone", "senderName"}, Rules: []Rule[EmailFormData]{
			Required("tone", func(d *EmailFormData) string { return d.Tone }),
		}},
	},
	prefill: func(d *EmailFormData, icp ICPResult) {
		fillString(&d.TargetAudience, icp.Audience())
	},
})

var Content = register(&Definition[ContentFormData]{
	kind:       "content",
	storageKey: KeyContent,
	steps: []Step[ContentFormData]{
		{Title: "Niche", Fields: []string{"niche", "targetAudience"}, Rules: []Rule[ContentFormData]{
			Required("niche", func(d *ContentFormData) string { return d.Niche }),
			Required("targetAudience", func(d *ContentFormData) string { return d.TargetAudience }),
		}},
		{Title: "Plateformes", Fields: []string{"platforms", "goals"}, Rules: []Rule[ContentFormData]{
			RequiredList("platforms", func(d *ContentFormData) []string { return d.Platforms }),
		}},
		{Title: "Rythme", Fields: []string{"postsPerWeek", "weeks", "startDate"}, Rules: []Rule[ContentFormData]{
			IntRange("postsPerWeek", func(d *ContentFormData) int { return d.PostsPerWeek }, 1, 21),
			IntRange("weeks", func(d *ContentFormData) int { return d.Weeks }, 1, 12),
		}},
		{Title: "Ligne éditoriale", Fields: []string{"contentPillars", "tone"}, Rules: []Rule[ContentFormData]{
			RequiredList("contentPillars", func(d *ContentFormData) []string { return d.ContentPillars }),
			Required("tone", func(d *ContentFormData) string { return d.Tone }),
		}},
	},
	prefill: func(d *ContentFormData, icp ICPResult) {
		fillString(&d.TargetAudience, icp.Audience())
		fillList(&d.Platforms, icp.Channels)
	},
})

var Veille = register(&Definition[VeilleFormData]{
	kind:       "veille",
	storageKey: KeyVeille,
	steps: []Step[VeilleFormData]{
		{Title: "Secteur", Fields: []string{"industry"}, Rules: []Rule[VeilleFormData]{
			Required("industry", func(d *VeilleFormData) string { return d.Industry }),
		}},
		{Title: "Mots-clés", Fields: []string{"keywords", "competitors"}, Rules: []Rule[VeilleFormData]{
			RequiredList("keywords", func(d *VeilleFormData) []string { return d.Keywords }),
		}},
		{Title: "Sources", Fields: []string{"sources", "frequency", "alertTopics", "includeTrends"}, Rules: []Rule[VeilleFormData]{
			RequiredList("sources", func(d *VeilleFormData) []string { return d.Sources }),
			Required("frequency", func(d *VeilleFormData) string { return d.Frequency }),
		}},
	},
})

var ICP = register(&Definition[ICPFormData]{
	kind: "icp",
	steps: []Step[ICPFormData]{
		{Title: "Votre offre", Fields: []string{"productDescription", "niche", "market", "priceRange"}, Rules: []Rule[ICPFormData]{
			Required("productDescription", func(d *ICPFormData) string { return d.ProductDescription }),
			Required("niche", func(d *ICPFormData) string { return d.Niche }),
		}},
	},
})

var Offer = register(&Definition[OfferFormData]{
	kind: "offer",
	steps: []Step[OfferFormData]{
		{Title: "Votre offre", Fields: []string{"productName", "targetAudience", "price", "transformation"}, Rules: []Rule[OfferFormData]{
			Required("productName", func(d *OfferFormData) string { return d.ProductName }),
			Required("targetAudience", func(d *OfferFormData) string { return d.TargetAudience }),
			IntRange("price", func(d *OfferFormData) int { return d.Price }, 1, 100000),
			Required("transformation", func(d *OfferFormData) string { return d.Transformation }),
		}},
	},
	prefill: func(d *OfferFormData, icp ICPResult) {
		fillString(&d.TargetAudience, icp.Audience())
	},
})

var Titles = register(&Definition[TitlesFormData]{
	kind: "titles",
	steps: []Step[TitlesFormData]{
		{Title: "Sujet", Fields: []string{"topic", "format", "count"}, Rules: []Rule[TitlesFormData]{
			Required("topic", func(d *TitlesFormData) string { return d.Topic }),
			Required("format", func(d *TitlesFormData) string { return d.Format }),
			IntRange("count", func(d *TitlesFormData) int { return d.Count }, 1, 20),
		}},
	},
})

var ContentSystem = register(&Definition[ContentSystemFormData]{
	kind: "content-system",
	steps: []Step[ContentSystemFormData]{
		{Title: "Votre système", Fields: []string{"niche", "platforms", "hoursPerWeek"}, Rules: []Rule[ContentSystemFormData]{
			Required("niche", func(d *ContentSystemFormData) string { return d.Niche }),
			RequiredList("platforms", func(d *ContentSystemFormData) []string { return d.Platforms }),
			IntRange("hoursPerWeek", func(d *ContentSystemFormData) int { return d.HoursPerWeek }, 1, 80),
		}},
	},
})
