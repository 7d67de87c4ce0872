package country

// aliases covers spellings seen in public node dumps that differ from the
// common/official names known to gountries.
var aliases = map[string]string{
	"united states":                    "us",
	"united states of america":         "us",
	"usa":                              "us",
	"u.s.":                             "us",
	"u.s.a.":                           "us",
	"america":                          "us",
	"united kingdom":                   "gb",
	"great britain":                    "gb",
	"britain":                          "gb",
	"england":                          "gb",
	"scotland":                         "gb",
	"wales":                            "gb",
	"northern ireland":                 "gb",
	"russia":                           "ru",
	"russian federation":               "ru",
	"south korea":                      "kr",
	"korea":                            "kr",
	"korea, republic of":               "kr",
	"republic of korea":                "kr",
	"north korea":                      "kp",
	"the netherlands":                  "nl",
	"netherlands":                      "nl",
	"holland":                          "nl",
	"czech republic":                   "cz",
	"czechia":                          "cz",
	"vietnam":                          "vn",
	"viet nam":                         "vn",
	"iran":                             "ir",
	"iran, islamic republic of":        "ir",
	"syria":                            "sy",
	"laos":                             "la",
	"moldova":                          "md",
	"republic of moldova":              "md",
	"bolivia":                          "bo",
	"venezuela":                        "ve",
	"tanzania":                         "tz",
	"taiwan":                           "tw",
	"taiwan, province of china":        "tw",
	"hong kong":                        "hk",
	"hong kong sar":                    "hk",
	"macau":                            "mo",
	"macao":                            "mo",
	"ivory coast":                      "ci",
	"cote d'ivoire":                    "ci",
	"côte d'ivoire":                    "ci",
	"uae":                              "ae",
	"united arab emirates":             "ae",
	"turkey":                           "tr",
	"türkiye":                          "tr",
	"turkiye":                          "tr",
	"brunei":                           "bn",
	"cape verde":                       "cv",
	"eswatini":                         "sz",
	"swaziland":                        "sz",
	"macedonia":                        "mk",
	"north macedonia":                  "mk",
	"palestine":                        "ps",
	"vatican":                          "va",
	"vatican city":                     "va",
	"kosovo":                           "xk",
	"dr congo":                         "cd",
	"democratic republic of the congo": "cd",
	"congo":                            "cg",
	"republic of the congo":            "cg",
	"the bahamas":                      "bs",
	"bahamas":                          "bs",
	"the gambia":                       "gm",
	"gambia":                           "gm",
	"micronesia":                       "fm",
	"st. lucia":                        "lc",
	"saint lucia":                      "lc",
	"curacao":                          "cw",
	"curaçao":                          "cw",
	"reunion":                          "re",
	"réunion":                          "re",
}
