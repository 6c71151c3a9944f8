package kb

// Default returns the built-in knowledge base used when no directory is
// configured. Content mirrors the shipped JSON documents so the pipeline
// works out of the box.
func Default() *Store {
	return &Store{
		entries: map[string]Entry{
			"breast": {Stages: map[string]StageRule{
				"0": {
					PrimaryTreatments: []string{"Breast-conserving surgery (lumpectomy)"},
					Surgery:           []string{"Lumpectomy", "Total mastectomy"},
					Radiation:         []string{"Whole-breast radiation after lumpectomy"},
					FollowUp:          []string{"Annual mammography", "Clinical exam every 6-12 months"},
				},
				"I": {
					PrimaryTreatments: []string{"Lumpectomy with sentinel node biopsy followed by radiation"},
					Surgery:           []string{"Lumpectomy", "Mastectomy with reconstruction option"},
					Radiation:         []string{"Whole-breast radiation", "Partial-breast irradiation for selected patients"},
					Systemic:          []string{"Adjuvant endocrine therapy if ER/PR positive", "Consider adjuvant chemotherapy per Oncotype score"},
					Targeted:          map[string]string{"HER2": "Trastuzumab plus Pertuzumab (dual HER2 blockade)"},
					Alternatives:      []string{"Mastectomy without radiation for selected cases"},
					FollowUp:          []string{"Annual mammography", "Clinical exam every 4-6 months for 5 years"},
					BRCA:              []string{"Consider bilateral risk-reducing mastectomy", "PARP inhibitor (Olaparib) eligibility assessment"},
					Residual:          []string{"T-DM1 (Ado-trastuzumab emtansine) for residual HER2-positive disease", "Capecitabine for residual triple-negative disease"},
				},
				"II": {
					PrimaryTreatments: []string{"Surgery followed by adjuvant systemic therapy and radiation"},
					Surgery:           []string{"Lumpectomy with axillary staging", "Mastectomy"},
					Radiation:         []string{"Whole-breast or post-mastectomy radiation"},
					Systemic:          []string{"AC-T (Doxorubicin/Cyclophosphamide then Paclitaxel)", "Endocrine therapy if hormone-receptor positive"},
					Targeted:          map[string]string{"HER2": "Trastuzumab plus Pertuzumab (dual HER2 blockade)"},
					Alternatives:      []string{"Neoadjuvant chemotherapy to downstage before surgery"},
					FollowUp:          []string{"Annual mammography", "Clinical exam every 3-6 months"},
					BRCA:              []string{"PARP inhibitor (Olaparib) eligibility assessment"},
					Residual:          []string{"T-DM1 (Ado-trastuzumab emtansine) for residual HER2-positive disease"},
				},
				"III": {
					PrimaryTreatments: []string{"Neoadjuvant chemotherapy followed by surgery and radiation"},
					Surgery:           []string{"Modified radical mastectomy", "Breast-conserving surgery after downstaging"},
					Radiation:         []string{"Post-mastectomy chest wall and nodal radiation"},
					Systemic:          []string{"Dose-dense AC-T (Doxorubicin/Cyclophosphamide then Paclitaxel)", "Endocrine therapy if hormone-receptor positive"},
					Targeted:          map[string]string{"HER2": "Trastuzumab plus Pertuzumab with neoadjuvant chemotherapy"},
					FollowUp:          []string{"Imaging and clinical exam every 3-4 months"},
					BRCA:              []string{"PARP inhibitor (Olaparib) for high-risk BRCA-mutated disease"},
					Residual:          []string{"Capecitabine for residual triple-negative disease"},
				},
				"IV": {
					PrimaryTreatments: []string{"Systemic therapy guided by receptor status"},
					Systemic:          []string{"CDK4/6 inhibitor plus aromatase inhibitor if hormone-receptor positive", "Taxane-based chemotherapy"},
					Targeted:          map[string]string{"HER2": "Trastuzumab Deruxtecan for HER2-positive metastatic disease"},
					Immunotherapy:     []string{"Pembrolizumab plus chemotherapy for PD-L1 positive triple-negative disease"},
					Alternatives:      []string{"Clinical trial enrollment", "Palliative radiation for symptomatic sites"},
					FollowUp:          []string{"Restaging imaging every 2-3 cycles", "Symptom-directed review each visit"},
				},
			}},
			"brain": {Stages: map[string]StageRule{
				"LOCALIZED": {
					PrimaryTreatments: []string{"Maximal safe surgical resection followed by radiotherapy with concurrent Temozolomide (Stupp protocol)"},
					Surgery:           []string{"Maximal safe resection", "Stereotactic biopsy when resection not feasible"},
					Radiation:         []string{"Fractionated external beam radiotherapy 60 Gy in 30 fractions"},
					Systemic:          []string{"Concurrent and adjuvant Temozolomide"},
					Alternatives:      []string{"Hypofractionated radiotherapy for elderly or frail patients"},
					FollowUp:          []string{"MRI brain 2-6 weeks post-radiation, then every 2-4 months"},
				},
				"RECURRENT": {
					PrimaryTreatments: []string{"Re-resection when feasible, otherwise systemic therapy"},
					Surgery:           []string{"Re-resection for accessible recurrence"},
					Radiation:         []string{"Re-irradiation in selected patients"},
					Systemic:          []string{"Bevacizumab", "Lomustine"},
					Alternatives:      []string{"Tumor-treating fields", "Clinical trial enrollment"},
					FollowUp:          []string{"MRI brain every 2-3 months"},
				},
			}},
			"lung": {Stages: map[string]StageRule{
				"I": {
					PrimaryTreatments: []string{"Lobectomy with mediastinal lymph node evaluation"},
					Surgery:           []string{"Lobectomy", "Segmentectomy for limited reserve"},
					Radiation:         []string{"Stereotactic body radiotherapy (SBRT) for medically inoperable patients"},
					FollowUp:          []string{"Chest CT every 6 months for 2 years, then annually"},
				},
				"II": {
					PrimaryTreatments: []string{"Surgical resection followed by adjuvant chemotherapy"},
					Surgery:           []string{"Lobectomy or pneumonectomy with nodal dissection"},
					Systemic:          []string{"Cisplatin-based adjuvant chemotherapy"},
					Targeted:          map[string]string{"EGFR": "Adjuvant Osimertinib for EGFR-mutated disease"},
					FollowUp:          []string{"Chest CT every 6 months for 2-3 years"},
				},
				"III": {
					PrimaryTreatments: []string{"Concurrent chemoradiation followed by consolidation Durvalumab"},
					Radiation:         []string{"Definitive thoracic radiotherapy 60 Gy"},
					Systemic:          []string{"Platinum doublet chemotherapy concurrent with radiation"},
					Targeted: map[string]string{
						"EGFR": "Osimertinib after chemoradiation for EGFR-mutated disease",
					},
					Immunotherapy: []string{"Durvalumab consolidation for 12 months"},
					FollowUp:      []string{"Chest CT every 3-6 months"},
				},
				"IV": {
					PrimaryTreatments: []string{"Biomarker-directed systemic therapy"},
					Systemic:          []string{"Platinum doublet chemotherapy", "Pemetrexed maintenance for non-squamous histology"},
					Targeted: map[string]string{
						"EGFR": "Osimertinib (third-generation EGFR TKI)",
						"ALK":  "Alectinib (ALK inhibitor)",
						"KRAS": "Sotorasib for KRAS G12C-mutated disease",
					},
					Immunotherapy: []string{"Pembrolizumab monotherapy for PD-L1 >= 50%", "Pembrolizumab plus chemotherapy for PD-L1 < 50%"},
					Alternatives:  []string{"Clinical trial enrollment", "Palliative radiation for symptomatic sites"},
					FollowUp:      []string{"Restaging imaging every 2-3 cycles"},
				},
			}},
			"liver": {Stages: map[string]StageRule{
				"I": {
					PrimaryTreatments: []string{"Surgical resection for preserved liver function"},
					Surgery:           []string{"Partial hepatectomy", "Liver transplant evaluation within Milan criteria"},
					Alternatives:      []string{"Radiofrequency ablation for small lesions"},
					FollowUp:          []string{"AFP and liver imaging every 3-6 months"},
				},
				"II": {
					PrimaryTreatments: []string{"Resection or locoregional therapy based on liver function"},
					Surgery:           []string{"Partial hepatectomy"},
					Radiation:         []string{"Stereotactic body radiotherapy for unresectable lesions"},
					Alternatives:      []string{"Transarterial chemoembolization (TACE)"},
					FollowUp:          []string{"AFP and liver imaging every 3 months"},
				},
				"III": {
					PrimaryTreatments: []string{"Transarterial chemoembolization (TACE)"},
					Systemic:          []string{"Atezolizumab plus Bevacizumab", "Lenvatinib"},
					Alternatives:      []string{"Transarterial radioembolization (TARE)"},
					FollowUp:          []string{"Cross-sectional imaging every 2-3 months"},
				},
				"IV": {
					PrimaryTreatments: []string{"Systemic therapy with immunotherapy combination"},
					Systemic:          []string{"Atezolizumab plus Bevacizumab first line", "Sorafenib or Lenvatinib alternative first line"},
					Immunotherapy:     []string{"Atezolizumab plus Bevacizumab"},
					Alternatives:      []string{"Best supportive care for decompensated liver function"},
					FollowUp:          []string{"Imaging every 2-3 months", "Liver function monitoring each cycle"},
				},
			}},
			"pancreas": {Stages: map[string]StageRule{
				"I": {
					PrimaryTreatments: []string{"Surgical resection followed by adjuvant chemotherapy"},
					Surgery:           []string{"Pancreaticoduodenectomy (Whipple procedure)", "Distal pancreatectomy for body/tail lesions"},
					Systemic:          []string{"Adjuvant modified FOLFIRINOX (Fluorouracil/Leucovorin/Irinotecan/Oxaliplatin)"},
					FollowUp:          []string{"CA 19-9 and CT every 3-6 months for 2 years"},
				},
				"II": {
					PrimaryTreatments: []string{"Resection with adjuvant chemotherapy, consider neoadjuvant approach"},
					Surgery:           []string{"Pancreaticoduodenectomy with vascular assessment"},
					Systemic:          []string{"Modified FOLFIRINOX (Fluorouracil/Leucovorin/Irinotecan/Oxaliplatin)", "Gemcitabine plus Capecitabine for borderline performance"},
					FollowUp:          []string{"CA 19-9 and CT every 3-6 months"},
				},
				"III": {
					PrimaryTreatments: []string{"Induction chemotherapy, reassess for resectability"},
					Radiation:         []string{"Chemoradiation after induction for locally advanced disease"},
					Systemic:          []string{"FOLFIRINOX (Fluorouracil/Leucovorin/Irinotecan/Oxaliplatin)", "Gemcitabine plus nab-Paclitaxel"},
					Alternatives:      []string{"Clinical trial enrollment"},
					FollowUp:          []string{"CA 19-9 and CT every 2-3 months"},
				},
				"IV": {
					PrimaryTreatments: []string{"Systemic chemotherapy with palliative intent integration"},
					Systemic:          []string{"FOLFIRINOX for good performance status", "Gemcitabine plus nab-Paclitaxel"},
					Alternatives:      []string{"Gemcitabine monotherapy for limited performance", "Best supportive care"},
					FollowUp:          []string{"Symptom review and CA 19-9 each cycle"},
				},
			}},
		},
		common: Common{
			Contraindications: map[string][]string{
				"cardiac": {
					"Anthracyclines (Doxorubicin) without cardiology clearance",
					"HER2-targeted agents (Trastuzumab) require baseline LVEF assessment",
				},
				"renal": {
					"Cisplatin requires dose adjustment or substitution with Carboplatin",
					"Avoid high-dose Methotrexate in renal impairment",
				},
			},
			FollowUp: map[string][]string{
				"standard": {
					"Clinical evaluation every 3-6 months for 2 years, then every 6-12 months",
					"Cross-sectional imaging per disease-specific surveillance schedule",
					"Laboratory surveillance including tumor markers when applicable",
				},
			},
			Evidence: []string{
				"NCCN Clinical Practice Guidelines in Oncology",
				"ESMO Clinical Practice Guidelines",
				"Peer-reviewed randomized controlled trials",
			},
		},
	}
}
