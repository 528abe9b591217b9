package blocklist

// Compiled-in block rules. These are agency, platform, and management
// company addresses that must never enter an outreach campaign; the
// stored rules extend this set at runtime.

var defaultDomains = []string{
	// Rental management companies and agencies
	"holidu.com",
	"awaze.com",
	"belvilla.com",
	"bestfewo.de",
	"e-domizil.de",
	"secra.de",
	"homerti.com",
	"landfolk.com",
	"placeyourplace.es",
	"staymoovers.com",
	"gastgeberservice.com",
	"villaforyou.com",
	"die-fewoagentur.de",
	"travanto.de",
	"dancenter.com",
	"v-office.com",
	"ds-destinationsolutions.com",
	"interhome.group",
	"interhome.com",
	"novasol.com",
	"novasol.dk",
	"guestready.com",
	"homerez.com",
	"helloguest.com",
	"helloguest.co.uk",
	"plumguide.com",
	"sykescottages.co.uk",
	"sykescottages.com",
	"lomarengas.com",
	"italianway.com",
	"altido.com",
	"cityrelay.com",
	"hostnfly.com",
	"houst.com",
	"onefinestay.com",
	"halldis.com",
	"friendlyrentals.com",
	"travelopo.com",
	"passthekeys.com",
	"nestify.com",
	"vacasa.com",
	"hostmaker.com",
	"ruralidays.com",
	"bnblord.com",

	// Booking platforms and OTAs
	"booking.com",
	"booking.de",
	"booking.it",
	"booking.es",
	"booking.pl",
	"booking.hr",
	"airbnb.com",
	"airbnb.de",
	"airbnb.it",
	"airbnb.es",
	"airbnb.pl",
	"expedia.com",
	"expedia.de",
	"tripadvisor.com",
	"tripadvisor.de",
	"vrbo.com",
	"vrbo.it",
	"homeaway.com",
	"homeaway.it",
	"agoda.com",
	"hotels.com",
	"trivago.com",
	"hometogo.com",
	"hometogo.de",
	"rentalsunited.com",
	"flipkey.com",
	"holidaylettings.co.uk",
	"wimdu.com",
	"9flats.com",
	"kayak.com",
	"skyscanner.com",
	"momondo.com",

	// Travel agencies and tour operators
	"tui.com",
	"tui.de",
	"thomascook.com",
	"lastminute.com",
	"opodo.com",
	"edreams.com",
	"sail-croatia.com",
	"adriagate.com",
	"adriatic.hr",
	"apartments.hr",

	// Tourist boards and real estate portals
	"croatia.hr",
	"italia.it",
	"istria.hr",
	"infozagreb.hr",
	"tzdubrovnik.hr",
	"poland.travel",
	"germany.travel",
	"spain.info",
	"visitberlin.de",
	"esmadrid.com",
	"barcelonaturisme.com",
	"warsawtour.pl",
	"krakow.travel",
	"casa.it",
	"immobiliare.it",
	"idealista.it",
}

var defaultDomainPatterns = []string{
	// Typo domains
	"gmail.pl",
	"gimail.com",
	"hmail.com",
	"gmai.com",

	// Invalid domains
	"end2endservice.de",
	"opoczta.pl",

	// Forwarding domains embedding a platform address
	"booking.com@holidu",
	"novasol.booking",
}

var defaultEmailPatterns = []string{
	"novasol.booking.com@awaze.com",
	"cs.bookingcom@holidu.com",
	"lhs-booking@holidu.com",
	"bookingservice@secra.de",
	"partnerprogramm@e-domizil.de",
	"service.fh@belvilla.com",
	"belvillapt@belvilla.com",
	"booking.com@bestfewo.de",
}
