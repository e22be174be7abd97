package entities

// Curated French vocabularies used in place of a locale-bound fake-text
// provider, so that generated output depends only on the seeded random
// source.

var cities = []string{
	"Paris", "Lyon", "Marseille", "Toulouse", "Nantes", "Bordeaux",
	"Lille", "Rennes", "Strasbourg", "Grenoble", "Dijon", "Angers",
	"Nimes", "Tours", "Amiens", "Metz", "Besancon", "Orleans",
	"Rouen", "Caen", "Nancy", "Avignon", "Poitiers", "Pau",
}

// publicSuffixes name the kinds of public bodies a PUBLIC client can be.
var publicSuffixes = []string{
	"Mairie", "Conseil Departemental", "Prefecture",
	"Hopital", "Universite", "Lycee", "College",
}

var companyStems = []string{
	"Altair", "Nexio", "Sopra", "Vertex", "Lumina", "Cegid",
	"Axone", "Oberon", "Silex", "Novatis", "Keolia", "Braxa",
	"Tessia", "Mirova", "Elixo", "Quanta", "Orfea", "Zephir",
	"Calista", "Daxium",
}

var companyForms = []string{
	"SARL", "SAS", "SA", "Conseil", "Groupe", "Industries",
	"Services", "Technologies", "Consulting", "Distribution",
}

var firstNames = []string{
	"Jean", "Marie", "Pierre", "Sophie", "Luc", "Claire",
	"Paul", "Julie", "Marc", "Laura", "Hugo", "Camille",
	"Louis", "Emma", "Nicolas", "Alice", "Thomas", "Lea",
}

var lastNames = []string{
	"Martin", "Bernard", "Dubois", "Robert", "Richard", "Petit",
	"Durand", "Leroy", "Moreau", "Simon", "Laurent", "Lefebvre",
	"Michel", "Garcia", "David", "Bertrand", "Roux", "Vincent",
}

var emailDomains = []string{
	"example.fr", "mail.fr", "entreprise.fr", "societe.fr",
}

// invoiceLabels describe the billed service.
var invoiceLabels = []string{
	"Developpement logiciel", "Consulting IT", "Maintenance SaaS",
	"Formation technique", "Licence logicielle", "Hebergement cloud",
	"Audit securite", "Integration ERP", "Support applicatif",
	"Migration infrastructure",
}

var expenseCategories = []string{
	"Fournitures bureau", "Frais professionnels", "Deplacements",
	"Communication", "Formation", "Logiciels", "Materiel informatique",
	"Frais bancaires", "Assurances", "Loyer", "Services publics",
	"Marketing", "Maintenance", "Transport", "Restauration", "Hebergement",
}

var expenseLabelPrefixes = []string{
	"Frais", "Note", "Facture", "Remboursement", "Achat", "Service",
}

var expenseLabelSubjects = []string{
	"deplacement", "fournitures", "abonnement", "carburant",
	"repas", "hotel", "licence", "peage", "parking", "telephonie",
}
