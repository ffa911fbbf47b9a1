package schema

import "strings"

// Object categories
const (
	CategoryFile               = "file"
	CategoryBitstream          = "bitstream"
	CategoryRepresentation     = "representation"
	CategoryIntellectualEntity = "intellectual entity"
)

// V3 covers the object, event, agent and rights entities of PREMIS 3 along
// with the semantic units nested under them.
var V3 = MustNew(
	Kind{
		Name: "object",
		Fields: []Field{
			Nested("objectIdentifier", RequiredMany),
			Text("objectCategory", RequiredOne),
			Nested("preservationLevel", OptionalMany),
			Nested("significantProperties", OptionalMany),
			Nested("objectCharacteristics", RequiredMany),
			Text("originalName", OptionalOne),
			Nested("storage", OptionalMany),
			Nested("signatureInformation", OptionalMany),
			Nested("relationship", OptionalMany),
			Nested("linkingEventIdentifier", OptionalMany),
			Nested("linkingRightsStatementIdentifier", OptionalMany),
		},
		Discriminant: &Discriminant{
			Field: "objectCategory",
			Attr:  "xsi:type",
			Values: []string{
				CategoryFile,
				CategoryBitstream,
				CategoryRepresentation,
				CategoryIntellectualEntity,
			},
			Inapplicable: map[string][]string{
				CategoryBitstream: {"preservationLevel", "originalName"},
				CategoryRepresentation: {
					"objectCharacteristics", "storage", "signatureInformation",
				},
				CategoryIntellectualEntity: {
					"objectCharacteristics", "storage", "signatureInformation",
				},
			},
		},
	},
	identifier("objectIdentifier"),
	Kind{
		Name: "preservationLevel",
		Fields: []Field{
			Text("preservationLevelType", OptionalOne),
			Text("preservationLevelValue", RequiredOne),
			Text("preservationLevelRole", OptionalOne),
			Text("preservationLevelRationale", OptionalMany),
			Text("preservationLevelDateAssigned", OptionalOne),
		},
	},
	Kind{
		Name: "significantProperties",
		Fields: []Field{
			Text("significantPropertiesType", OptionalOne),
			Text("significantPropertiesValue", OptionalOne),
			Ext("significantPropertiesExtension", OptionalMany),
		},
		Rules: []Rule{{
			Name:  "significantProperties needs a value or an extension",
			AnyOf: []string{"significantPropertiesValue", "significantPropertiesExtension"},
		}},
	},
	Kind{
		Name: "objectCharacteristics",
		Fields: []Field{
			Text("compositionLevel", OptionalOne),
			Nested("fixity", OptionalMany),
			Text("size", OptionalOne),
			Nested("format", RequiredMany),
			Nested("creatingApplication", OptionalMany),
			Nested("inhibitors", OptionalMany),
			Ext("objectCharacteristicsExtension", OptionalMany),
		},
	},
	Kind{
		Name: "fixity",
		Fields: []Field{
			Text("messageDigestAlgorithm", RequiredOne),
			Text("messageDigest", RequiredOne),
			Text("messageDigestOriginator", OptionalOne),
		},
	},
	Kind{
		Name: "format",
		Fields: []Field{
			Nested("formatDesignation", OptionalOne),
			Nested("formatRegistry", OptionalOne),
			Text("formatNote", OptionalMany),
		},
		Rules: []Rule{{
			Name:  "format needs a designation or a registry entry",
			AnyOf: []string{"formatDesignation", "formatRegistry"},
		}},
	},
	Kind{
		Name: "formatDesignation",
		Fields: []Field{
			Text("formatName", RequiredOne),
			Text("formatVersion", OptionalOne),
		},
	},
	Kind{
		Name: "formatRegistry",
		Fields: []Field{
			Text("formatRegistryName", RequiredOne),
			Text("formatRegistryKey", RequiredOne),
			Text("formatRegistryRole", OptionalOne),
		},
	},
	Kind{
		Name: "creatingApplication",
		Fields: []Field{
			Text("creatingApplicationName", OptionalOne),
			Text("creatingApplicationVersion", OptionalOne),
			Text("dateCreatedByApplication", OptionalOne),
			Ext("creatingApplicationExtension", OptionalMany),
		},
	},
	Kind{
		Name: "inhibitors",
		Fields: []Field{
			Text("inhibitorType", RequiredOne),
			Text("inhibitorTarget", OptionalMany),
			Text("inhibitorKey", OptionalOne),
		},
	},
	Kind{
		Name: "storage",
		Fields: []Field{
			Nested("contentLocation", OptionalOne),
			Text("storageMedium", OptionalOne),
		},
		Rules: []Rule{{
			Name:  "storage needs a content location or a medium",
			AnyOf: []string{"contentLocation", "storageMedium"},
		}},
	},
	Kind{
		Name: "contentLocation",
		Fields: []Field{
			Text("contentLocationType", RequiredOne),
			Text("contentLocationValue", RequiredOne),
		},
	},
	Kind{
		Name: "signatureInformation",
		Fields: []Field{
			Nested("signature", OptionalMany),
			Ext("signatureInformationExtension", OptionalMany),
		},
		Rules: []Rule{{
			Name:  "signatureInformation needs a signature or an extension",
			AnyOf: []string{"signature", "signatureInformationExtension"},
		}},
	},
	Kind{
		Name: "signature",
		Fields: []Field{
			Text("signatureEncoding", RequiredOne),
			Text("signer", OptionalOne),
			Text("signatureMethod", RequiredOne),
			Text("signatureValue", RequiredOne),
			Text("signatureValidationRules", RequiredOne),
			Text("signatureProperties", OptionalMany),
			Ext("keyInformation", OptionalOne),
		},
	},
	Kind{
		Name: "relationship",
		Fields: []Field{
			Text("relationshipType", RequiredOne),
			Text("relationshipSubType", RequiredOne),
			Nested("relatedObjectIdentifier", RequiredMany),
			Nested("relatedEventIdentifier", OptionalMany),
		},
	},
	sequenced("relatedObjectIdentifier"),
	sequenced("relatedEventIdentifier"),
	identifier("linkingEventIdentifier"),
	identifier("linkingRightsStatementIdentifier"),

	Kind{
		Name: "event",
		Fields: []Field{
			Nested("eventIdentifier", RequiredOne),
			Text("eventType", RequiredOne),
			Text("eventDateTime", RequiredOne),
			Nested("eventDetailInformation", OptionalMany),
			Nested("eventOutcomeInformation", OptionalMany),
			Nested("linkingAgentIdentifier", OptionalMany),
			Nested("linkingObjectIdentifier", OptionalMany),
		},
	},
	identifier("eventIdentifier"),
	Kind{
		Name: "eventDetailInformation",
		Fields: []Field{
			Text("eventDetail", OptionalOne),
			Ext("eventDetailExtension", OptionalMany),
		},
	},
	Kind{
		Name: "eventOutcomeInformation",
		Fields: []Field{
			Text("eventOutcome", OptionalOne),
			Nested("eventOutcomeDetail", OptionalMany),
		},
	},
	Kind{
		Name: "eventOutcomeDetail",
		Fields: []Field{
			Text("eventOutcomeDetailNote", OptionalOne),
			Ext("eventOutcomeDetailExtension", OptionalMany),
		},
	},
	roled("linkingAgentIdentifier", OptionalMany),
	roled("linkingObjectIdentifier", OptionalMany),

	Kind{
		Name: "agent",
		Fields: []Field{
			Nested("agentIdentifier", RequiredMany),
			Text("agentName", OptionalMany),
			Text("agentType", OptionalOne),
			Text("agentVersion", OptionalOne),
			Text("agentNote", OptionalMany),
			Ext("agentExtension", OptionalMany),
			Nested("linkingEventIdentifier", OptionalMany),
			Nested("linkingRightsStatementIdentifier", OptionalMany),
		},
	},
	identifier("agentIdentifier"),

	Kind{
		Name: "rights",
		Fields: []Field{
			Nested("rightsStatement", OptionalMany),
			Ext("rightsExtension", OptionalMany),
		},
		Rules: []Rule{{
			Name:  "rights needs a statement or an extension",
			AnyOf: []string{"rightsStatement", "rightsExtension"},
		}},
	},
	Kind{
		Name: "rightsStatement",
		Fields: []Field{
			Nested("rightsStatementIdentifier", RequiredOne),
			Text("rightsBasis", RequiredOne),
			Nested("copyrightInformation", OptionalOne),
			Nested("licenseInformation", OptionalOne),
			Nested("statuteInformation", OptionalMany),
			Nested("otherRightsInformation", OptionalOne),
			Nested("rightsGranted", OptionalMany),
			Nested("linkingObjectIdentifier", OptionalMany),
			Nested("linkingAgentIdentifier", OptionalMany),
		},
	},
	identifier("rightsStatementIdentifier"),
	Kind{
		Name: "copyrightInformation",
		Fields: []Field{
			Text("copyrightStatus", RequiredOne),
			Text("copyrightJurisdiction", RequiredOne),
			Text("copyrightStatusDeterminationDate", OptionalOne),
			Text("copyrightNote", OptionalMany),
			Nested("copyrightDocumentationIdentifier", OptionalMany),
			Nested("copyrightApplicableDates", OptionalOne, "startAndEndDate"),
		},
	},
	roled("copyrightDocumentationIdentifier", OptionalOne),
	Kind{
		Name: "licenseInformation",
		Fields: []Field{
			Nested("licenseDocumentationIdentifier", OptionalMany),
			Text("licenseTerms", OptionalOne),
			Text("licenseNote", OptionalMany),
			Nested("licenseApplicableDates", OptionalOne, "startAndEndDate"),
		},
	},
	roled("licenseDocumentationIdentifier", OptionalOne),
	Kind{
		Name: "statuteInformation",
		Fields: []Field{
			Text("statuteJurisdiction", RequiredOne),
			Text("statuteCitation", RequiredOne),
			Text("statuteInformationDeterminationDate", OptionalOne),
			Text("statuteNote", OptionalMany),
			Nested("statuteApplicableDates", OptionalOne, "startAndEndDate"),
		},
	},
	Kind{
		Name: "otherRightsInformation",
		Fields: []Field{
			Text("otherRightsBasis", RequiredOne),
			Text("otherRightsNote", OptionalMany),
			Nested("otherRightsApplicableDates", OptionalOne, "startAndEndDate"),
		},
	},
	Kind{
		Name: "rightsGranted",
		Fields: []Field{
			Text("act", RequiredOne),
			Text("restriction", OptionalMany),
			Nested("termOfGrant", OptionalOne, "startAndEndDate"),
			Nested("termOfRestriction", OptionalOne, "startAndEndDate"),
			Text("rightsGrantedNote", OptionalMany),
		},
	},
	Kind{
		Name: "startAndEndDate",
		Fields: []Field{
			Text("startDate", RequiredOne),
			Text("endDate", OptionalOne),
		},
	},
)

// identifier is the ubiquitous (type, value) pair, e.g. objectIdentifierType
// and objectIdentifierValue for "objectIdentifier".
func identifier(name string) Kind {
	return Kind{
		Name: name,
		Fields: []Field{
			Text(name+"Type", RequiredOne),
			Text(name+"Value", RequiredOne),
		},
	}
}

func sequenced(name string) Kind {
	k := identifier(name)
	k.Fields = append(k.Fields, Text(trimIdentifier(name)+"Sequence", OptionalOne))
	return k
}

func roled(name string, c Cardinality) Kind {
	k := identifier(name)
	k.Fields = append(k.Fields, Text(trimIdentifier(name)+"Role", c))
	return k
}

// relatedObjectIdentifier -> relatedObject
func trimIdentifier(name string) string {
	return strings.TrimSuffix(name, "Identifier")
}
