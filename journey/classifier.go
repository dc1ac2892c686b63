package journey

import "strings"

// Category is the stable classification of a touchpoint channel label.
type Category string

const (
	CategoryGoogle         Category = "google"
	CategoryFacebook       Category = "facebook"
	CategoryInstagram      Category = "instagram"
	CategoryOrganic        Category = "organic"
	CategoryVirginia       Category = "virginia"
	CategorySiteButton     Category = "sitebotão"
	CategorySiteButtonBio  Category = "sitebotaobio"
	CategoryMailbiz        Category = "mailbiz"
	CategoryDiaMaes        Category = "diamaes"
	CategoryColecaoInverno Category = "colecaoinverno"
	CategorySaleAtacado    Category = "saleatacado"
	CategoryFreteDay       Category = "freteday"
	CategoryEurolinkBio    Category = "eurolinkbio"
	CategoryAnaPaula       Category = "anapaula"
	CategoryFacebookAds    Category = "facebookads"
	CategoryDefault        Category = "default"
)

type channelRule struct {
	substring string
	category  Category
}

// channelRules is scanned in order; the first substring contained in the
// normalized label wins. Note "facebook" shadows "facebookads".
var channelRules = []channelRule{
	{"google", CategoryGoogle},
	{"facebook", CategoryFacebook},
	{"instagram", CategoryInstagram},
	{"organic", CategoryOrganic},
	{"virginia", CategoryVirginia},
	{"sitebotão", CategorySiteButton},
	{"sitebotaobio", CategorySiteButtonBio},
	{"mailbiz", CategoryMailbiz},
	{"diamaes", CategoryDiaMaes},
	{"colecaoinverno", CategoryColecaoInverno},
	{"saleatacado", CategorySaleAtacado},
	{"freteday", CategoryFreteDay},
	{"eurolinkbio", CategoryEurolinkBio},
	{"anapaula", CategoryAnaPaula},
	{"facebookads", CategoryFacebookAds},
}

// Classify maps a channel label to its category. It is pure.
func Classify(channel string) Category {
	normalized := strings.ToLower(channel)
	for _, rule := range channelRules {
		if strings.Contains(normalized, rule.substring) {
			return rule.category
		}
	}
	return CategoryDefault
}

// Categories lists every category in table order, followed by the default.
func Categories() []Category {
	out := make([]Category, 0, len(channelRules)+1)
	for _, rule := range channelRules {
		out = append(out, rule.category)
	}
	return append(out, CategoryDefault)
}
