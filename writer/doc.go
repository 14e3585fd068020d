// Package writer lowers IR nodes into TypeScript source built on zod v4.
//
// A [Writer] is bound to one registry and the graph facts computed for it.
// [Writer.Expression] lowers an inline node, [Writer.Component] and
// [Writer.TypeDecl] emit the declarations of one named component, and
// [Writer.Document] emits a whole module:
//
//	import { z } from "zod";
//
//	export type Pet = {
//	  name: string;
//	  tag?: string | null;
//	};
//	export const Pet = z.looseObject({
//	  name: z.string(),
//	  tag: z.string().optional().nullable(),
//	});
//
// Every node shape has exactly one lowering rule. A node the writer cannot
// lower is an error wrapping [ir.ErrUnsupportedShape]; nothing falls back to
// an unchecked value.
package writer
