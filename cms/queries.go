package cms

const postsQuery = `*[_type == "post" && defined(slug.current)]
  | order(publishedAt desc) {
    _id,
    title,
    "slug": slug.current,
    excerpt,
    publishedAt,
    "authorName": author->name,
    "categories": categories[]->title
  }`

const postBySlugQuery = `*[_type == "post" && slug.current == $slug][0] {
  _id,
  title,
  "slug": slug.current,
  excerpt,
  seoTitle,
  seoDescription,
  publishedAt,
  updatedAt,
  body,
  mainImage {
    asset,
    alt
  },
  "author": author-> {
    name,
    bio,
    image
  },
  "categories": categories[]->title
}`
