package insight

const postPadrao = `#Licitações #TCU #NovoEntendimento

O TCU, por meio do Acórdão {{.Number}}/{{.Year}}-{{.Panel}}, estabeleceu importante precedente sobre {{.Topic}}.

Principais pontos:
{{range .Points}}✅ {{.}}
{{end}}
📌 Relator: {{.Rapporteur}}
📌 Data: {{.Date}}

{{hashtags .Hashtags 3}}
`

const analiseDetalhada = `#AnáliseJurídica #TCU #Jurisprudência

📑 ANÁLISE DE JURISPRUDÊNCIA DO TCU 📑

Acórdão {{.Number}}/{{.Year}}-{{.Panel}}
Relator: {{.Rapporteur}}
Data: {{.Date}}

📋 RESUMO:
{{.Summary}}

🔍 ANÁLISE DETALHADA:
{{range .Points}}• {{.}}
{{end}}
💡 IMPACTO PRÁTICO:
{{.ImpactNote}}

⚖️ CONCLUSÃO:
{{.Conclusion}}

{{hashtags .Hashtags 3}}
`

const dicaRapida = `#DicaRápida #TCU #Licitações

💡 VOCÊ SABIA? 💡

Segundo o Acórdão {{.Number}}/{{.Year}}-{{.Panel}} do TCU:

"{{.Quote}}"

Isso significa que {{.Explanation}}

📌 Fonte: TCU, Acórdão {{.Number}}/{{.Year}}, Relator: {{.Rapporteur}}

{{hashtags .Hashtags 2}}
`
