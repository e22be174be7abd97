package emitter

// Bank-statement label vocabularies, modeled on real French statements.

var expenseOperationLabels = []string{
	"CB CARREFOUR",
	"PRLV EDF PARIS",
	"CB STATION SERVICE",
	"PRLV SFR MOBILE",
	"CB AMAZON EU",
	"CB LECLERC",
	"PRLV ORANGE FRANCE",
	"CB FNAC",
	"LOYER BUREAUX",
	"VIREMENT EMIS",
}

var expenseAdditionalLabels = []string{
	"ACHAT {date}",
	"FRAIS {date}",
	"DEPENSE {date}",
	"FOURNITURES",
	"SERVICES",
	"UTILITIES",
	"MAINTENANCE",
	"APPROVISIONNEMENT",
}

var orphanOperationLabels = []string{
	"FRAIS BANCAIRES",
	"AGIOS",
	"COMMISSION VIREMENT",
	"COTISATION CARTE",
	"FRAIS TENUE COMPTE",
	"VIR DIVERS",
	"REMBOURSEMENT",
	"INTERETS CREDITEURS",
	"PENALITES RETARD",
	"FRAIS CHANGE",
}

var orphanAdditionalLabels = []string{
	"FRAIS MENSUELS",
	"COMMISSION",
	"PENALITE",
	"AJUSTEMENT",
	"CORRECTION",
	"REGULARISATION",
	"DIVERS",
}
