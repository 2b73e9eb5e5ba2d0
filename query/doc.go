// Package query provides DQML parsing, validation and plan execution.
//
// DQML is a data-mining query language with a fixed clause order:
//
//	[USE DATABASE db] [SELECT cols] FROM tables [WHERE cond]
//	[GROUP BY cols] [ORDER BY cols [ASC|DESC]]
//	[MINE op] [WITH measures] [DISPLAY AS kind]
//
// FROM is the only mandatory clause. The package implements the whole
// front half of the pipeline: a lexer, a recursive-descent parser, a
// catalog-backed validator and a plan builder. Execution is delegated
// to three collaborator interfaces (Retriever, Miner, Visualizer)
// driven by the Orchestrator.
//
// # Basic Usage
//
// Compile a query against a catalog and execute it:
//
//	plan, err := query.Compile("FROM customers WHERE age > 30 MINE CLUSTER K=3", catalog)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	orch := query.NewOrchestrator(store, miner, viz)
//	result := orch.Execute(plan)
//	if !result.Success {
//	    log.Fatal(result.Err)
//	}
//
// # Error Taxonomy
//
// Failures are typed by pipeline stage: LexError and SyntaxError from
// parsing, SemanticError from validation, ExecutionError (wrapping the
// stage's cause) from execution. Compilation is fail-fast and never
// yields a partial AST.
//
// # Mining Operations
//
// MINE supports CLUSTER K=<n>, ASSOCIATION_RULES, ANOMALIES,
// STATISTICS, CLASSIFICATION TARGET=<col> and REGRESSION
// TARGET=<col>. Operation names are contextual identifiers rather than
// keywords, so a column named cluster stays usable in conditions.
package query
