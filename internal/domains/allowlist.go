package domains

// AllowList is the fixed set of trusted news sources, keyed by
// canonical domain. Loaded once at process start; no mutation path.
var AllowList = []string{
	// Wire services and global outlets
	"reuters.com",
	"apnews.com",
	"afp.com",
	"upi.com",
	"bbc.com",
	"bbc.co.uk",
	"theguardian.com",
	"aljazeera.com",
	"dw.com",
	"france24.com",
	"euronews.com",
	"voanews.com",
	"rferl.org",

	// United States
	"nytimes.com",
	"washingtonpost.com",
	"wsj.com",
	"bloomberg.com",
	"cnn.com",
	"nbcnews.com",
	"cbsnews.com",
	"abcnews.com",
	"foxnews.com",
	"npr.org",
	"pbs.org",
	"usatoday.com",
	"latimes.com",
	"chicagotribune.com",
	"bostonglobe.com",
	"sfchronicle.com",
	"seattletimes.com",
	"dallasnews.com",
	"miamiherald.com",
	"startribune.com",
	"denverpost.com",
	"politico.com",
	"thehill.com",
	"axios.com",
	"theatlantic.com",
	"newyorker.com",
	"time.com",
	"newsweek.com",
	"fortune.com",
	"forbes.com",
	"businessinsider.com",
	"cnbc.com",
	"marketwatch.com",
	"barrons.com",
	"csmonitor.com",
	"vox.com",
	"slate.com",
	"propublica.org",
	"theintercept.com",
	"motherjones.com",
	"foreignpolicy.com",
	"foreignaffairs.com",
	"defensenews.com",
	"spacenews.com",
	"statnews.com",
	"semafor.com",

	// United Kingdom and Ireland
	"ft.com",
	"economist.com",
	"independent.co.uk",
	"telegraph.co.uk",
	"thetimes.co.uk",
	"standard.co.uk",
	"sky.com",
	"channel4.com",
	"newstatesman.com",
	"rte.ie",
	"irishtimes.com",
	"independent.ie",
	"thejournal.ie",

	// Europe
	"politico.eu",
	"lemonde.fr",
	"lefigaro.fr",
	"liberation.fr",
	"rfi.fr",
	"spiegel.de",
	"zeit.de",
	"faz.net",
	"sueddeutsche.de",
	"welt.de",
	"tagesschau.de",
	"nos.nl",
	"nrc.nl",
	"volkskrant.nl",
	"elpais.com",
	"elmundo.es",
	"lavanguardia.com",
	"corriere.it",
	"repubblica.it",
	"ansa.it",
	"lastampa.it",
	"politiken.dk",
	"dr.dk",
	"berlingske.dk",
	"tv2.dk",
	"aftenposten.no",
	"nrk.no",
	"vg.no",
	"svt.se",
	"dn.se",
	"hs.fi",
	"yle.fi",
	"swissinfo.ch",
	"euractiv.com",
	"kyivindependent.com",
	"pravda.com.ua",
	"ukrinform.net",
	"themoscowtimes.com",
	"meduza.io",

	// Asia-Pacific
	"scmp.com",
	"japantimes.co.jp",
	"asahi.com",
	"mainichi.jp",
	"kyodonews.net",
	"koreaherald.com",
	"koreatimes.co.kr",
	"straitstimes.com",
	"channelnewsasia.com",
	"bangkokpost.com",
	"thehindu.com",
	"hindustantimes.com",
	"indianexpress.com",
	"indiatimes.com",
	"dawn.com",
	"smh.com.au",
	"theage.com.au",
	"abc.net.au",
	"afr.com",
	"nzherald.co.nz",
	"stuff.co.nz",

	// Americas
	"cbc.ca",
	"ctvnews.ca",
	"globalnews.ca",
	"theglobeandmail.com",
	"nationalpost.com",
	"thestar.com",
	"clarin.com",
	"lanacion.com.ar",
	"uol.com.br",
	"globo.com",
	"eltiempo.com",
	"eluniversal.com.mx",
	"milenio.com",

	// Middle East and Africa
	"haaretz.com",
	"timesofisrael.com",
	"jpost.com",
	"arabnews.com",
	"gulfnews.com",
	"thenationalnews.com",
	"middleeasteye.net",
	"africanews.com",
	"mg.co.za",
	"news24.com",
	"ewn.co.za",

	// Science and technology
	"nature.com",
	"science.org",
	"scientificamerican.com",
	"newscientist.com",
	"arstechnica.com",
	"wired.com",
	"theverge.com",
	"techcrunch.com",
	"zdnet.com",
}

var allowSet = make(map[string]struct{}, len(AllowList))

func init() {
	for _, d := range AllowList {
		allowSet[d] = struct{}{}
	}
}
