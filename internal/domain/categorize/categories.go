package categorize

// P&L sections. Every category belongs to exactly one.
const (
	SectionIncome    = "income"
	SectionOpex      = "opex"
	SectionUtilities = "utilities"
	SectionFinancing = "financing"
)

// Category labels form a closed vocabulary. The delegated classifier may only
// answer with one of these, and anything else is rejected.
const (
	CatRentalIncome      = "Rental Income"
	CatManagementFees    = "Management Fees"
	CatLettingFees       = "Letting Fees"
	CatMaintenance       = "Maintenance & Repairs"
	CatCleaning          = "Cleaning"
	CatCouncilRates      = "Council Rates"
	CatLandTax           = "Land Tax"
	CatStrata            = "Strata / Body Corporate"
	CatBuildingInsurance = "Building Insurance"
	CatAdvertising       = "Advertising"
	CatElectricity       = "Electricity"
	CatWater             = "Water"
	CatGas               = "Gas"
	CatInternet          = "Internet"
	CatMortgageInterest  = "Mortgage Interest"
	CatMortgageRepayment = "Mortgage Repayment"
	CatMiscellaneous     = "Miscellaneous"
)

// categorySections is the canonical category -> section mapping. Delegated
// answers have their section rewritten from this table so a confused model
// cannot file Electricity under income.
var categorySections = map[string]string{
	CatRentalIncome:      SectionIncome,
	CatManagementFees:    SectionOpex,
	CatLettingFees:       SectionOpex,
	CatMaintenance:       SectionOpex,
	CatCleaning:          SectionOpex,
	CatCouncilRates:      SectionOpex,
	CatLandTax:           SectionOpex,
	CatStrata:            SectionOpex,
	CatBuildingInsurance: SectionOpex,
	CatAdvertising:       SectionOpex,
	CatElectricity:       SectionUtilities,
	CatWater:             SectionUtilities,
	CatGas:               SectionUtilities,
	CatInternet:          SectionUtilities,
	CatMortgageInterest:  SectionFinancing,
	CatMortgageRepayment: SectionFinancing,
	CatMiscellaneous:     SectionOpex,
}

// SectionFor returns the canonical section for a category, or "" when the
// category is not in the vocabulary.
func SectionFor(category string) string {
	return categorySections[category]
}

// ValidCategory reports whether the label is in the closed vocabulary.
func ValidCategory(category string) bool {
	_, ok := categorySections[category]
	return ok
}

// Rule binds a lowercase keyword to a section and category. Learned rules are
// minted by the delegated classifier; static rules ship with the binary.
type Rule struct {
	Keyword  string
	Section  string
	Category string
	Learned  bool
}

func r(kw, section, category string) Rule {
	return Rule{Keyword: kw, Section: section, Category: category}
}

// staticRules is the built-in keyword table for bank transaction descriptions.
// Keywords are matched as substrings of the lowercased description; trailing
// spaces on short keywords ("tap ", "lock ") stop them firing inside longer
// words.
var staticRules = []Rule{
	// Income
	r("rental income", SectionIncome, CatRentalIncome),
	r("rent received", SectionIncome, CatRentalIncome),
	r("eft to owner", SectionIncome, CatRentalIncome),
	r("disbursement", SectionIncome, CatRentalIncome),

	// Management
	r("management fee", SectionOpex, CatManagementFees),
	r("property management", SectionOpex, CatManagementFees),
	r("admin fee", SectionOpex, CatManagementFees),
	r("administration fee", SectionOpex, CatManagementFees),
	r("letting fee", SectionOpex, CatLettingFees),
	r("leasing fee", SectionOpex, CatLettingFees),
	r("lease renewal", SectionOpex, CatLettingFees),
	r("tenant placement", SectionOpex, CatLettingFees),
	r("reletting", SectionOpex, CatLettingFees),

	// Maintenance and repairs
	r("maintenance", SectionOpex, CatMaintenance),
	r("repair", SectionOpex, CatMaintenance),
	r("handyman", SectionOpex, CatMaintenance),
	r("trade service", SectionOpex, CatMaintenance),
	r("plumber", SectionOpex, CatMaintenance),
	r("plumbing", SectionOpex, CatMaintenance),
	r("drain", SectionOpex, CatMaintenance),
	r("blocked drain", SectionOpex, CatMaintenance),
	r("tap ", SectionOpex, CatMaintenance),
	r("taps ", SectionOpex, CatMaintenance),
	r("toilet", SectionOpex, CatMaintenance),
	r("cistern", SectionOpex, CatMaintenance),
	r("pipe ", SectionOpex, CatMaintenance),
	r("pipes ", SectionOpex, CatMaintenance),
	r("hot water", SectionOpex, CatMaintenance),
	r("water heater", SectionOpex, CatMaintenance),
	r("electrical", SectionOpex, CatMaintenance),
	r("electrician", SectionOpex, CatMaintenance),
	r("wiring", SectionOpex, CatMaintenance),
	r("switchboard", SectionOpex, CatMaintenance),
	r("light fitting", SectionOpex, CatMaintenance),
	r("smoke alarm", SectionOpex, CatMaintenance),
	r("safety switch", SectionOpex, CatMaintenance),
	r("power point", SectionOpex, CatMaintenance),
	r("locksmith", SectionOpex, CatMaintenance),
	r("lock ", SectionOpex, CatMaintenance),
	r("locks ", SectionOpex, CatMaintenance),
	r("keys ", SectionOpex, CatMaintenance),
	r("key cutting", SectionOpex, CatMaintenance),
	r("access card", SectionOpex, CatMaintenance),
	r("deadbolt", SectionOpex, CatMaintenance),
	r("door handle", SectionOpex, CatMaintenance),
	r("pest control", SectionOpex, CatMaintenance),
	r("termite", SectionOpex, CatMaintenance),
	r("vermin", SectionOpex, CatMaintenance),
	r("rodent", SectionOpex, CatMaintenance),
	r("cockroach", SectionOpex, CatMaintenance),
	r("roofing", SectionOpex, CatMaintenance),
	r("roof repair", SectionOpex, CatMaintenance),
	r("gutters", SectionOpex, CatMaintenance),
	r("gutter clean", SectionOpex, CatMaintenance),
	r("downpipe", SectionOpex, CatMaintenance),
	r("fascia", SectionOpex, CatMaintenance),
	r("ceiling", SectionOpex, CatMaintenance),
	r("wall repair", SectionOpex, CatMaintenance),
	r("plaster", SectionOpex, CatMaintenance),
	r("rendering", SectionOpex, CatMaintenance),
	r("waterproofing", SectionOpex, CatMaintenance),
	r("carpet", SectionOpex, CatMaintenance),
	r("flooring", SectionOpex, CatMaintenance),
	r("tiling", SectionOpex, CatMaintenance),
	r("tile ", SectionOpex, CatMaintenance),
	r("tiles ", SectionOpex, CatMaintenance),
	r("grout", SectionOpex, CatMaintenance),
	r("floorboard", SectionOpex, CatMaintenance),
	r("vinyl", SectionOpex, CatMaintenance),
	r("painting", SectionOpex, CatMaintenance),
	r("painter", SectionOpex, CatMaintenance),
	r("touch up", SectionOpex, CatMaintenance),
	r("patching", SectionOpex, CatMaintenance),
	r("glazier", SectionOpex, CatMaintenance),
	r("window repair", SectionOpex, CatMaintenance),
	r("glass repair", SectionOpex, CatMaintenance),
	r("screen repair", SectionOpex, CatMaintenance),
	r("door repair", SectionOpex, CatMaintenance),
	r("roller door", SectionOpex, CatMaintenance),
	r("garage door", SectionOpex, CatMaintenance),
	r("air conditioning", SectionOpex, CatMaintenance),
	r("air con", SectionOpex, CatMaintenance),
	r("aircon", SectionOpex, CatMaintenance),
	r("hvac", SectionOpex, CatMaintenance),
	r("split system", SectionOpex, CatMaintenance),
	r("ducted", SectionOpex, CatMaintenance),
	r("appliance", SectionOpex, CatMaintenance),
	r("oven repair", SectionOpex, CatMaintenance),
	r("dishwasher repair", SectionOpex, CatMaintenance),
	r("washing machine", SectionOpex, CatMaintenance),
	r("rangehood", SectionOpex, CatMaintenance),
	r("fencing", SectionOpex, CatMaintenance),
	r("fence repair", SectionOpex, CatMaintenance),
	r("gate repair", SectionOpex, CatMaintenance),
	r("concreting", SectionOpex, CatMaintenance),
	r("driveway", SectionOpex, CatMaintenance),
	r("paving", SectionOpex, CatMaintenance),
	r("retaining wall", SectionOpex, CatMaintenance),
	r("carpentry", SectionOpex, CatMaintenance),
	r("carpenter", SectionOpex, CatMaintenance),
	r("joinery", SectionOpex, CatMaintenance),
	r("cabinet", SectionOpex, CatMaintenance),
	r("pool service", SectionOpex, CatMaintenance),
	r("pool repair", SectionOpex, CatMaintenance),
	r("spa repair", SectionOpex, CatMaintenance),
	r("pool chemical", SectionOpex, CatMaintenance),

	// Cleaning and grounds
	r("cleaning", SectionOpex, CatCleaning),
	r("clean ", SectionOpex, CatCleaning),
	r("cleaner", SectionOpex, CatCleaning),
	r("bond clean", SectionOpex, CatCleaning),
	r("end of lease", SectionOpex, CatCleaning),
	r("vacate clean", SectionOpex, CatCleaning),
	r("exit clean", SectionOpex, CatCleaning),
	r("move out clean", SectionOpex, CatCleaning),
	r("pressure wash", SectionOpex, CatCleaning),
	r("window clean", SectionOpex, CatCleaning),
	r("carpet clean", SectionOpex, CatCleaning),
	r("steam clean", SectionOpex, CatCleaning),
	r("rubbish removal", SectionOpex, CatCleaning),
	r("waste removal", SectionOpex, CatCleaning),
	r("junk removal", SectionOpex, CatCleaning),
	r("skip bin", SectionOpex, CatCleaning),
	r("lawn", SectionOpex, CatCleaning),
	r("mowing", SectionOpex, CatCleaning),
	r("mow ", SectionOpex, CatCleaning),
	r("garden", SectionOpex, CatCleaning),
	r("garden maintenance", SectionOpex, CatCleaning),
	r("gardening", SectionOpex, CatCleaning),
	r("gardener", SectionOpex, CatCleaning),
	r("landscaping", SectionOpex, CatCleaning),
	r("landscaper", SectionOpex, CatCleaning),
	r("hedging", SectionOpex, CatCleaning),
	r("pruning", SectionOpex, CatCleaning),
	r("tree lopping", SectionOpex, CatCleaning),
	r("tree removal", SectionOpex, CatCleaning),
	r("arborist", SectionOpex, CatCleaning),
	r("weeding", SectionOpex, CatCleaning),
	r("mulching", SectionOpex, CatCleaning),
	r("irrigation", SectionOpex, CatCleaning),
	r("turf", SectionOpex, CatCleaning),

	// Government and statutory
	r("council rates", SectionOpex, CatCouncilRates),
	r("municipal rates", SectionOpex, CatCouncilRates),
	r("rates notice", SectionOpex, CatCouncilRates),
	r("land tax", SectionOpex, CatLandTax),
	r("state revenue", SectionOpex, CatLandTax),
	r("revenue nsw", SectionOpex, CatLandTax),
	r("osr ", SectionOpex, CatLandTax),
	r("strata levy", SectionOpex, CatStrata),
	r("body corporate", SectionOpex, CatStrata),
	r("owners corporation", SectionOpex, CatStrata),
	r("strata management", SectionOpex, CatStrata),
	r("building insurance", SectionOpex, CatBuildingInsurance),
	r("landlord insurance", SectionOpex, CatBuildingInsurance),
	r("property insurance", SectionOpex, CatBuildingInsurance),
	r("insurance premium", SectionOpex, CatBuildingInsurance),
	r("advertising", SectionOpex, CatAdvertising),
	r("photography", SectionOpex, CatAdvertising),

	// Utilities
	r("electricity", SectionUtilities, CatElectricity),
	r("energy", SectionUtilities, CatElectricity),
	r("ausgrid", SectionUtilities, CatElectricity),
	r("agl", SectionUtilities, CatElectricity),
	r("origin energy", SectionUtilities, CatElectricity),
	r("simply energy", SectionUtilities, CatElectricity),
	r("alinta", SectionUtilities, CatElectricity),
	r("water", SectionUtilities, CatWater),
	r("sydney water", SectionUtilities, CatWater),
	r("icon water", SectionUtilities, CatWater),
	r("gas", SectionUtilities, CatGas),
	r("jemena", SectionUtilities, CatGas),
	r("internet", SectionUtilities, CatInternet),
	r("broadband", SectionUtilities, CatInternet),
	r("nbn", SectionUtilities, CatInternet),
	r("telstra", SectionUtilities, CatInternet),
	r("optus", SectionUtilities, CatInternet),
	r("iinet", SectionUtilities, CatInternet),
	r("aussie broadband", SectionUtilities, CatInternet),

	// Financing
	r("mortgage", SectionFinancing, CatMortgageInterest),
	r("home loan", SectionFinancing, CatMortgageInterest),
	r("loan interest", SectionFinancing, CatMortgageInterest),
	r("loan repayment", SectionFinancing, CatMortgageRepayment),
	r("principal", SectionFinancing, CatMortgageRepayment),
}

// invoiceRule ties a keyword group to a category. Groups are evaluated in
// declaration order; the first group with any keyword present wins.
type invoiceRule struct {
	keywords []string
	section  string
	category string
}

var invoiceRules = []invoiceRule{
	{[]string{"council rates", "rates notice", "rate notice",
		"municipal rates", "local council", "council levy", "quarterly rates",
		"local government rates", "government rates and charges",
		"rates and charges", "general grv", "grv valuation",
		"rubbish/recycling service", "rubbish recycling service",
		"emergency services levy"},
		SectionOpex, CatCouncilRates},

	{[]string{"land tax", "land value tax", "state revenue office", "revenue nsw",
		"notice of assessment", "land tax assessment"},
		SectionOpex, CatLandTax},

	{[]string{"strata levy", "body corporate", "owners corporation",
		"strata management", "strata plan", "administrative fund",
		"sinking fund", "capital works fund"},
		SectionOpex, CatStrata},

	{[]string{"landlord insurance", "building insurance", "property insurance",
		"insurance premium", "policy renewal", "certificate of insurance"},
		SectionOpex, CatBuildingInsurance},

	{[]string{"handyman", "trade services", "pest control", "termite",
		"plumber", "plumbing", "electrician", "electrical",
		"locksmith", "painter", "carpentry", "carpenter",
		"roofing", "roofer", "gutters", "gutter", "air conditioning",
		"hvac", "hot water system", "carpet", "tiling", "tile",
		"concreting", "fencing", "fence"},
		SectionOpex, CatMaintenance},

	{[]string{"cleaning service", "bond clean", "end of lease clean",
		"lawn mowing", "garden maintenance", "landscaping",
		"rubbish removal", "window cleaning"},
		SectionOpex, CatCleaning},

	{[]string{"property management", "management fee", "management agreement"},
		SectionOpex, CatManagementFees},

	{[]string{"letting fee", "leasing fee", "tenant placement"},
		SectionOpex, CatLettingFees},

	{[]string{"real estate photography", "advertising", "domain listing",
		"realestate.com", "marketing"},
		SectionOpex, CatAdvertising},

	{[]string{"electricity", "energy usage", "kwh", "power bill",
		"electricity charge"},
		SectionUtilities, CatElectricity},

	{[]string{"water use", "water service", "sewerage", "water usage",
		"water consumption"},
		SectionUtilities, CatWater},

	{[]string{"natural gas", "gas usage", "gas service charge"},
		SectionUtilities, CatGas},

	{[]string{"internet service", "broadband", "nbn service", "data usage"},
		SectionUtilities, CatInternet},
}
