package prompts

// defaults are the built-in templates, used when no file override
// exists. Placeholders use {{name}} syntax.
var defaults = map[string]string{
	QueryRefine: `You turn research questions into arXiv search queries.
Rewrite the user's topic as a concise keyword query suitable for the arXiv API.
Return only the query string, nothing else.

Topic: {{topic}}`,

	PaperRank: `You rank academic papers by relevance to a topic.
Given the numbered candidate papers below, return the numbers of the {{count}} most
relevant ones, most relevant first, as a comma-separated list. Return only the list.

Topic: {{topic}}

Candidates:
{{candidates}}`,

	Explainer: `You are a research communicator. Explain the paper below for a technically
literate reader who is not a specialist in its field. Cover the problem, the approach,
the key findings, and why they matter. Be accurate and concrete; avoid hype.

{{paper}}`,

	SocialPost: `Write a short social media post announcing the research below.
Keep it under 280 characters, engaging but factual, with no hashtag spam.

{{paper}}`,

	PDFAnalysis: `You are reading an excerpt of an academic PDF. Summarize what the document
is about, its main contributions, and any notable methods or results visible in the
excerpt. Note that the excerpt may be truncated.

{{text}}`,

	InfographicSpec: `Summarize the paper below as structured JSON for an infographic.
Return only a JSON object with the keys: "title" (short headline), "key_points"
(array of 3-5 one-sentence findings), "takeaway" (one sentence).

{{paper}}`,

	InfographicBrief: `You are an art director. Turn the structured summary below into a
single-paragraph creative brief for an infographic image: describe the layout, the
visual elements for each key point, and the overall style. Flat design, clean
typography, no photorealism.

{{summary}}`,

	RefExtraction: `Extract the bibliographic references from the text below.
Return only a JSON array; each element is an object with the keys "title", "authors"
(array of strings), "year" (number or null), and "doi" (string or null).
If there are no references, return [].

{{text}}`,

	ClaimExtraction: `Extract the factual claims the text below makes about prior work or
empirical results. Return only a JSON array of strings, each a single self-contained
claim. Skip opinions and the author's own contributions. If there are none, return [].

{{text}}`,

	ClaimVerdict: `You judge whether evidence supports a claim.

Claim: {{claim}}

Evidence from the literature:
{{evidence}}

Return only a JSON object with the keys: "verdict" (one of "supported",
"contradicted", "unverifiable"), "confidence" (number from 0 to 1), and
"reasoning" (one or two sentences).`,
}
